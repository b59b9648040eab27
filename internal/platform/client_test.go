package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/felixgeelhaar/placement/internal/domain"
	"github.com/felixgeelhaar/placement/internal/errors"
	"github.com/felixgeelhaar/placement/internal/retry"
)

func noRetry() Option {
	return WithRetry(retry.Config{MaxRetries: 0})
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return NewClient(server.URL, opts...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestLogin_Success(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "asha@uni.edu", req.Email)

		writeJSON(w, http.StatusOK, map[string]any{
			"user":   map[string]any{"id": "u-1", "email": "asha@uni.edu", "role": "student"},
			"tokens": map[string]any{"accessToken": "acc", "refreshToken": "ref"},
		})
	})

	resp, err := client.Login(context.Background(), "asha@uni.edu", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "u-1", resp.User.ID)
	assert.Equal(t, domain.RoleStudent, resp.User.Role)
	assert.Equal(t, "acc", resp.Tokens.AccessToken)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Invalid email or password"})
	})

	_, err := client.Login(context.Background(), "asha@uni.edu", "wrong")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Contains(t, err.Error(), "Invalid email or password")
}

func TestLogin_ResponseWithoutTokensIsRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"user": map[string]any{"id": "u-1"}})
	})

	_, err := client.Login(context.Background(), "a@b.c", "pw")
	assert.Error(t, err)
}

func TestLogin_ResponseWithoutUserIDIsRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"user":   map[string]any{"firstName": "A", "role": "student"},
			"tokens": map[string]any{"accessToken": "acc", "refreshToken": "ref"},
		})
	})

	_, err := client.Login(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeBadResponse), "got %v", err)
}

func TestRegister_PendingApproval(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Registration pending approval"})
	})

	resp, err := client.Register(context.Background(), RegisterRequest{Email: "r@co.com", Role: domain.RoleRecruiter})
	require.NoError(t, err)
	assert.False(t, resp.HasSession())
	assert.Equal(t, "Registration pending approval", resp.Message)
}

func TestAPIError_JoinsValidationDetails(t *testing.T) {
	tests := []struct {
		name    string
		body    map[string]any
		wantMsg string
	}{
		{
			name: "field objects",
			body: map[string]any{
				"message": "Validation failed",
				"details": []map[string]string{
					{"field": "email", "message": "already registered"},
					{"field": "password", "message": "too short"},
				},
			},
			wantMsg: "Validation failed: email: already registered; password: too short (status 400)",
		},
		{
			name:    "string array under errors",
			body:    map[string]any{"errors": []string{"email is required"}},
			wantMsg: "email is required (status 400)",
		},
		{
			name:    "error key only",
			body:    map[string]any{"error": "Bad Request"},
			wantMsg: "Bad Request (status 400)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusBadRequest, tt.body)
			})

			_, err := client.Register(context.Background(), RegisterRequest{})
			require.Error(t, err)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestMe_SendsBearerAndAcceptsBothShapes(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{name: "bare user", body: map[string]any{"id": "u-9", "role": "tpo"}},
		{name: "enveloped user", body: map[string]any{"user": map[string]any{"id": "u-9", "role": "tpo"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				writeJSON(w, http.StatusOK, tt.body)
			}, WithTokenSource(StaticToken("tok")))

			user, err := client.Me(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "u-9", user.ID)
			assert.Equal(t, domain.RoleTPO, user.Role)
		})
	}
}

func TestGet_RetriesServerErrors(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			writeJSON(w, http.StatusBadGateway, map[string]any{"message": "upstream"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"unreadCount": 4})
	}, WithRetry(retry.Config{MaxRetries: 3, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}))

	count, err := client.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestMutations_AreNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "down"})
	}, WithRetry(retry.Config{MaxRetries: 3, InitialInterval: time.Millisecond}))

	err := client.MarkAllNotificationsRead(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(url, noRetry())
	_, err := client.UnreadCount(context.Background())
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.False(t, IsUnauthorized(err))
}

func TestNotificationsEndpoints(t *testing.T) {
	var paths []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.RequestURI())
		switch r.URL.Path {
		case "/notifications":
			writeJSON(w, http.StatusOK, map[string]any{
				"notifications": []map[string]any{
					{"id": "n1", "title": "Shortlisted", "type": "application", "isRead": false},
				},
			})
		default:
			w.WriteHeader(http.StatusNoContent)
		}
	}, noRetry())

	ctx := context.Background()
	resp, err := client.ListNotifications(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, resp.Notifications, 1)
	assert.Equal(t, domain.NotificationApplication, resp.Notifications[0].Type)

	require.NoError(t, client.MarkNotificationRead(ctx, "n1"))
	require.NoError(t, client.MarkAllNotificationsRead(ctx))

	assert.Equal(t, []string{
		"GET /notifications?limit=10&page=2",
		"PATCH /notifications/n1/read",
		"PATCH /notifications/mark-all-read",
	}, paths)
}

func TestListOrganizations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": "o1", "name": "State University", "type": "university"},
			{"id": "o2", "name": "Acme", "type": "company"},
		})
	})

	orgs, err := client.ListOrganizations(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, domain.OrganizationCompany, orgs[1].Type)
}

func TestListJobs_EncodesQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "golang", r.URL.Query().Get("search"))
		assert.Equal(t, "internship", r.URL.Query().Get("type"))
		writeJSON(w, http.StatusOK, map[string]any{"jobs": []map[string]any{{"id": "j1", "title": "SWE Intern"}}, "total": 11})
	})

	resp, err := client.ListJobs(context.Background(), domain.JobQuery{Page: 2, Limit: 10, Search: "golang", Type: domain.JobInternship})
	require.NoError(t, err)
	assert.Equal(t, 11, resp.Total)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, "SWE Intern", resp.Jobs[0].Title)
}

func TestObserverSeesEveryCall(t *testing.T) {
	var seen []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, map[string]any{"message": "forbidden"})
	}, noRetry(), WithObserver(func(endpoint string, status int, _ time.Duration) {
		seen = append(seen, endpoint)
		assert.Equal(t, http.StatusForbidden, status)
	}))

	_, err := client.ListPendingUsers(context.Background())
	require.Error(t, err)
	assert.True(t, IsForbidden(err))
	assert.Equal(t, []string{"users.pending"}, seen)
}

func TestRequestsAreTraced(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "down"})
	}, noRetry(), WithTracerProvider(tp))

	_, err := client.UnreadCount(context.Background())
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "notifications.unread_count", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
}

func TestDescribe(t *testing.T) {
	apiErr := &APIError{StatusCode: 409, Message: "Email already registered"}
	assert.Equal(t, "Email already registered", Describe(apiErr))
	assert.Equal(t, "boom", Describe(assert.AnError))
	assert.Equal(t, "could not reach the placement API", Describe(errors.NewNetworkError(assert.AnError)))
}
