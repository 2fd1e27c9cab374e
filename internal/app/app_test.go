package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"caterconnect_backend/internal/app"
	"caterconnect_backend/internal/config"
	"caterconnect_backend/internal/logger"
	"caterconnect_backend/internal/middleware"
	"caterconnect_backend/internal/testutil"
	"caterconnect_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cronSecret = "test_cron_secret"

func TestMain(m *testing.M) {
	logger.InitWithWriter("test", io.Discard)
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestServer - приложение на httptest поверх SQLite
type TestServer struct {
	Server  *httptest.Server
	Gateway *testutil.FakeGateway
	WS      *ws.WebSocketManager
}

func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.Supabase.JWTSecret = testutil.JWTSecret
	cfg.Workers.CronSecret = cronSecret

	db := testutil.NewTestDB(t)
	gateway := testutil.NewFakeGateway()
	application := app.Build(cfg, db, gateway)

	ctx, cancel := context.WithCancel(context.Background())
	go application.WSManager.Run(ctx)

	server := httptest.NewServer(application.Router)
	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	return &TestServer{Server: server, Gateway: gateway, WS: application.WSManager}
}

// SendRequest отправляет JSON-запрос, возвращает ответ и тело строкой
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err, "Ошибка кодирования JSON для запроса")
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Server.Client().Do(req)
	require.NoError(t, err, "Ошибка выполнения HTTP-запроса")
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(respBody)
}

// Do - SendRequest с проверкой статуса и разбором ответа в out
func (ts *TestServer) Do(t *testing.T, method, path, token string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()

	resp, respBody := ts.SendRequest(t, method, path, token, body)
	require.Equal(t, wantStatus, resp.StatusCode, "%s %s: %s", method, path, respBody)
	if out != nil {
		require.NoError(t, json.Unmarshal([]byte(respBody), out), respBody)
	}
}

type apiError struct {
	Error struct {
		Code    string `json:"code"`
		Domain  string `json:"domain"`
		Message string `json:"message"`
	} `json:"error"`
}

func decodeError(t *testing.T, body string) apiError {
	t.Helper()
	var e apiError
	require.NoError(t, json.Unmarshal([]byte(body), &e), body)
	return e
}

// account - пользователь Supabase с токеном
type account struct {
	ID    string
	Token string
}

func newAccount(t *testing.T) account {
	t.Helper()
	id := uuid.NewString()
	return account{ID: id, Token: testutil.Token(t, id, "u_"+id[:8]+"@test.com", nil)}
}

func (ts *TestServer) sync(t *testing.T, role, name, phone string) account {
	t.Helper()

	acc := newAccount(t)
	var user struct {
		ID           string  `json:"id"`
		Role         string  `json:"role"`
		ReferralCode *string `json:"referral_code"`
	}
	ts.Do(t, http.MethodPost, "/api/v1/users/sync", acc.Token, map[string]interface{}{
		"role":      role,
		"full_name": name,
		"phone":     phone,
	}, http.StatusOK, &user)

	require.Equal(t, acc.ID, user.ID)
	require.Equal(t, strings.ToUpper(role), user.Role)
	require.NotNil(t, user.ReferralCode)
	return acc
}

func (ts *TestServer) createJob(t *testing.T, owner account, title string) string {
	t.Helper()

	var job struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	ts.Do(t, http.MethodPost, "/api/v1/jobs", owner.Token, map[string]interface{}{
		"title":    title,
		"pay":      1200,
		"location": "Pune",
	}, http.StatusCreated, &job)
	require.Equal(t, "OPEN", job.Status)
	return job.ID
}

func TestJobLifecycle(t *testing.T) {
	ts := NewTestServer(t)

	owner := ts.sync(t, "owner", "Ravi Kumar", "9876543210")
	worker := ts.sync(t, "worker", "Asha Patil", "9123456780")
	jobID := ts.createJob(t, owner, "Wedding buffet")

	var application struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	ts.Do(t, http.MethodPost, "/api/v1/jobs/"+jobID+"/apply", worker.Token, nil, http.StatusCreated, &application)
	assert.Equal(t, "PENDING", application.Status)

	resp, body := ts.SendRequest(t, http.MethodPost, "/api/v1/jobs/"+jobID+"/apply", worker.Token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ALREADY_EXISTS", decodeError(t, body).Error.Code)

	// работник не может сам менять статус своей заявки
	resp, _ = ts.SendRequest(t, http.MethodPut, "/api/v1/applications/"+application.ID+"/status", worker.Token,
		map[string]string{"status": "ACCEPTED"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	for _, status := range []string{"accepted", "STARTED", "COMPLETED"} {
		var updated struct {
			Status string `json:"status"`
		}
		ts.Do(t, http.MethodPut, "/api/v1/applications/"+application.ID+"/status", owner.Token,
			map[string]string{"status": status}, http.StatusOK, &updated)
		assert.Equal(t, strings.ToUpper(status), updated.Status)
	}

	var job struct {
		Status string `json:"status"`
	}
	ts.Do(t, http.MethodGet, "/api/v1/jobs/"+jobID, worker.Token, nil, http.StatusOK, &job)
	assert.Equal(t, "COMPLETED", job.Status)

	var mine []struct {
		ID  string `json:"id"`
		Job *struct {
			Title string `json:"title"`
		} `json:"job"`
	}
	ts.Do(t, http.MethodGet, "/api/v1/applications/my", worker.Token, nil, http.StatusOK, &mine)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Job)
	assert.Equal(t, "Wedding buffet", mine[0].Job.Title)

	// оценка
	ts.Do(t, http.MethodPost, "/api/v1/ratings", owner.Token, map[string]interface{}{
		"job_id":        jobID,
		"rated_user_id": worker.ID,
		"value":         5,
		"review":        "On time, great service",
	}, http.StatusCreated, nil)

	var check struct {
		HasRated bool `json:"has_rated"`
		Rating   *struct {
			Value int `json:"value"`
		} `json:"rating"`
	}
	ts.Do(t, http.MethodGet, "/api/v1/ratings/check?job_id="+jobID+"&rated_user_id="+worker.ID, owner.Token, nil, http.StatusOK, &check)
	assert.True(t, check.HasRated)
	require.NotNil(t, check.Rating)
	assert.Equal(t, 5, check.Rating.Value)

	var me struct {
		User struct {
			AverageRating float64 `json:"average_rating"`
			RatingCount   int     `json:"rating_count"`
		} `json:"db_user"`
	}
	ts.Do(t, http.MethodGet, "/api/v1/users/me", worker.Token, nil, http.StatusOK, &me)
	assert.Equal(t, 5.0, me.User.AverageRating)
	assert.Equal(t, 1, me.User.RatingCount)

	// уведомления работника: три смены статуса и оценка
	var unread struct {
		Count int64 `json:"unread_count"`
	}
	ts.Do(t, http.MethodGet, "/api/v1/notifications/unread-count", worker.Token, nil, http.StatusOK, &unread)
	assert.Equal(t, int64(4), unread.Count)

	var notifications []struct {
		ID     string `json:"id"`
		IsRead bool   `json:"is_read"`
	}
	ts.Do(t, http.MethodGet, "/api/v1/notifications", worker.Token, nil, http.StatusOK, &notifications)
	require.Len(t, notifications, 4)

	ts.Do(t, http.MethodPut, "/api/v1/notifications/"+notifications[0].ID+"/read", worker.Token, nil, http.StatusOK, nil)
	resp, _ = ts.SendRequest(t, http.MethodPut, "/api/v1/notifications/"+notifications[1].ID+"/read", owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "Чужое уведомление не найдено")

	ts.Do(t, http.MethodGet, "/api/v1/notifications/unread-count", worker.Token, nil, http.StatusOK, &unread)
	assert.Equal(t, int64(3), unread.Count)

	ts.Do(t, http.MethodPut, "/api/v1/notifications/read-all", worker.Token, nil, http.StatusOK, nil)
	ts.Do(t, http.MethodGet, "/api/v1/notifications/unread-count", worker.Token, nil, http.StatusOK, &unread)
	assert.Zero(t, unread.Count)

	// на завершенную работу больше не откликаются
	late := ts.sync(t, "worker", "Late Worker", "9000000001")
	resp, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/jobs/"+jobID+"/apply", late.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAuthAndPermissions(t *testing.T) {
	ts := NewTestServer(t)

	resp, body := ts.SendRequest(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, body).Error.Code)

	resp, body = ts.SendRequest(t, http.MethodGet, "/api/v1/users/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_TOKEN", decodeError(t, body).Error.Code)

	// токен есть, профиля нет
	stranger := newAccount(t)
	var me struct {
		Identity struct {
			ID string `json:"id"`
		} `json:"supabase_user"`
		User *struct{} `json:"db_user"`
	}
	ts.Do(t, http.MethodGet, "/api/v1/users/me", stranger.Token, nil, http.StatusOK, &me)
	assert.Equal(t, stranger.ID, me.Identity.ID)
	assert.Nil(t, me.User)

	job := map[string]interface{}{"title": "Kitchen helper", "pay": 500}
	resp, body = ts.SendRequest(t, http.MethodPost, "/api/v1/jobs", stranger.Token, job)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "profile", decodeError(t, body).Error.Domain)

	worker := ts.sync(t, "worker", "Asha Patil", "9123456780")
	resp, body = ts.SendRequest(t, http.MethodPost, "/api/v1/jobs", worker.Token, job)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeError(t, body).Error.Code)

	owner := ts.sync(t, "owner", "Ravi Kumar", "9876543210")
	jobID := ts.createJob(t, owner, "Kitchen helper")
	resp, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/jobs/"+jobID+"/apply", owner.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "Владелец не откликается на работы")

	resp, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/jobs", owner.Token, map[string]interface{}{"title": "Cheap", "pay": 100})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = ts.SendRequest(t, http.MethodPost, "/api/v1/users/sync", newAccount(t).Token, map[string]interface{}{
		"role": "admin", "full_name": "X", "phone": "1",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", decodeError(t, body).Error.Code)

	resp, _ = ts.SendRequest(t, http.MethodDelete, "/api/v1/jobs/"+jobID, worker.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	ts.Do(t, http.MethodDelete, "/api/v1/jobs/"+jobID, owner.Token, nil, http.StatusOK, nil)
	resp, _ = ts.SendRequest(t, http.MethodGet, "/api/v1/jobs/"+jobID, owner.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestPublicEndpoints(t *testing.T) {
	ts := NewTestServer(t)

	owner := ts.sync(t, "owner", "Ravi Kumar", "9876543210")
	ts.sync(t, "worker", "Asha Patil", "9123456780")
	ts.createJob(t, owner, "Wedding buffet")

	resp, body := ts.SendRequest(t, http.MethodGet, "/api/v1/public/jobs", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "9876543210", "Контакты не публикуются")

	var jobs []struct {
		Title     string `json:"title"`
		OwnerName string `json:"owner_name"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &jobs))
	require.Len(t, jobs, 1)
	assert.Equal(t, "Ravi Kumar", jobs[0].OwnerName)

	resp, body = ts.SendRequest(t, http.MethodGet, "/api/v1/public/workers?limit=100", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotContains(t, body, "9123456780")
	assert.NotContains(t, body, "@test.com")
}

func TestSubscriptionFlow(t *testing.T) {
	ts := NewTestServer(t)
	owner := ts.sync(t, "owner", "Ravi Kumar", "9876543210")

	var sub struct {
		Tier string `json:"tier"`
	}
	ts.Do(t, http.MethodGet, "/api/v1/subscription", owner.Token, nil, http.StatusOK, &sub)
	assert.Equal(t, "FREE", sub.Tier)

	var order struct {
		OrderID  string `json:"order_id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
		KeyID    string `json:"key_id"`
	}
	ts.Do(t, http.MethodPost, "/api/v1/subscription/orders", owner.Token, nil, http.StatusCreated, &order)
	assert.Equal(t, int64(9900), order.Amount)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, "rzp_test_fake", order.KeyID)

	resp, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/subscription/verify", owner.Token, map[string]string{
		"razorpay_order_id":   order.OrderID,
		"razorpay_payment_id": "pay_001",
		"razorpay_signature":  "forged",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	ts.Do(t, http.MethodPost, "/api/v1/subscription/verify", owner.Token, map[string]string{
		"razorpay_order_id":   order.OrderID,
		"razorpay_payment_id": "pay_001",
		"razorpay_signature":  ts.Gateway.Sign(order.OrderID, "pay_001"),
	}, http.StatusOK, &sub)
	assert.Equal(t, "PRO", sub.Tier)

	var job struct {
		IsEmergency bool `json:"is_emergency"`
	}
	ts.Do(t, http.MethodPost, "/api/v1/jobs", owner.Token, map[string]interface{}{
		"title": "Urgent tandoor cook", "pay": 2000, "is_emergency": true,
	}, http.StatusCreated, &job)
	assert.True(t, job.IsEmergency)

	ts.Do(t, http.MethodPost, "/api/v1/subscription/downgrade", owner.Token, nil, http.StatusOK, &sub)
	assert.Equal(t, "FREE", sub.Tier)
}

func TestCronAndHealth(t *testing.T) {
	ts := NewTestServer(t)

	resp, _ := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.RequestIDHeader))

	resp, body := ts.SendRequest(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "http_requests_total")

	resp, _ = ts.SendRequest(t, http.MethodPost, "/api/v1/cron/reminders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/v1/cron/reminders", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.CronSecretHeader, cronSecret)
	cronResp, err := ts.Server.Client().Do(req)
	require.NoError(t, err)
	defer cronResp.Body.Close()
	require.Equal(t, http.StatusOK, cronResp.StatusCode)

	var sent struct {
		Sent int64 `json:"sent"`
	}
	require.NoError(t, json.NewDecoder(cronResp.Body).Decode(&sent))
	assert.Zero(t, sent.Sent)
}

func TestWebSocketNotification(t *testing.T) {
	ts := NewTestServer(t)
	owner := ts.sync(t, "owner", "Ravi Kumar", "9876543210")
	worker := ts.sync(t, "worker", "Asha Patil", "9123456780")
	jobID := ts.createJob(t, owner, "Wedding buffet")

	wsURL := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws?token=" + owner.Token
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	resp.Body.Close()
	defer conn.Close()

	_, resp, err = websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.Server.URL, "http")+"/ws", nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// регистрация в менеджере идет после handshake
	require.Eventually(t, func() bool { return ts.WS.IsClientConnected(owner.ID) }, 2*time.Second, 10*time.Millisecond)

	ts.Do(t, http.MethodPost, "/api/v1/jobs/"+jobID+"/apply", worker.Token, nil, http.StatusCreated, nil)

	var event struct {
		Type string `json:"type"`
		Data struct {
			Message string `json:"message"`
		} `json:"data"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&event))

	assert.Equal(t, "notification", event.Type)
	assert.Equal(t, "New applicant for your gig: Wedding buffet", event.Data.Message)
}
