package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAPI(t *testing.T, handler http.Handler) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIClient(srv.URL, 5*time.Second, newTestLogger())
}

func TestAPIClientLogin(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "dev@moa.works", body["email"])

		json.NewEncoder(w).Encode(User{ID: 1, Email: body["email"], Name: "개발자", UserType: "PERSON", Token: "tok-1"})
	}))

	user, err := api.Login(context.Background(), "dev@moa.works", "secret")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "tok-1", user.Token)
}

func TestAPIClientAttachesBearerToken(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-42", r.Header.Get("Authorization"))
		fmt.Fprint(w, "[]")
	}))
	api.SetToken("tok-42")

	_, err := api.Assignments(context.Background())
	require.NoError(t, err)
}

func TestAPIClientAssignments(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/assignments", r.URL.Path)
		fmt.Fprint(w, `[{"id":1,"title":"쇼핑몰","content":"설명","adminName":"김담당"},{"id":2,"title":"앱"}]`)
	}))

	assignments, err := api.Assignments(context.Background())
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "쇼핑몰", assignments[0].Title)
	assert.Equal(t, "김담당", assignments[0].AdminName)
}

func TestAPIClientErrorEnvelope(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"message":"이메일 또는 비밀번호가 올바르지 않습니다"}`)
	}))

	_, err := api.Login(context.Background(), "x@y.z", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "이메일 또는 비밀번호가 올바르지 않습니다")
	assert.Contains(t, err.Error(), "401")
}

func TestAPIClientErrorWithoutEnvelope(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))

	_, err := api.Assignments(context.Background())
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 502", err.Error())
}

func TestAPIClientSubmitProposal(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/proposals", r.URL.Path)
		var p Proposal
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		p.ID = 77
		p.Status = "SUBMITTED"
		json.NewEncoder(w).Encode(p)
	}))

	created, err := api.SubmitProposal(context.Background(), Proposal{AssignmentID: 3, Title: "제안", Content: "본문"})
	require.NoError(t, err)
	assert.Equal(t, 77, created.ID)
	assert.Equal(t, "SUBMITTED", created.Status)
}

func TestAPIClientEmptySuccessBody(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, api.AcceptProposal(context.Background(), 5))
}

func TestAPIClientSummaryChatReturnsPlainText(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/answer/summaryChat", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 12, body["assignmentId"])
		fmt.Fprint(w, "## 제안서 초안\n\n요약된 내용입니다.")
	}))

	draft, err := api.SummaryChat(context.Background(), 12, "user: 질문\nai: 답변")
	require.NoError(t, err)
	assert.Equal(t, "## 제안서 초안\n\n요약된 내용입니다.", draft)
}

func TestAPIClientStreamAnswer(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/answer/stream", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		fmt.Fprint(w, "data: [DONE]\n")
	}))

	body, err := api.StreamAnswer(context.Background(), StreamRequest{Question: "q"})
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "data: [DONE]\n", string(data))
}

func TestAPIClientStreamAnswerErrorStatus(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"message":"잠시 후 다시 시도해주세요"}`)
	}))

	_, err := api.StreamAnswer(context.Background(), StreamRequest{Question: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "잠시 후 다시 시도해주세요")
}

func TestAPIClientHealth(t *testing.T) {
	api := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/test", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	require.NoError(t, api.Health(context.Background()))

	down := newTestAPI(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	require.Error(t, down.Health(context.Background()))
}

func TestAPIClientHost(t *testing.T) {
	api := NewAPIClient("https://api.moa.works/", time.Second, newTestLogger())
	assert.Equal(t, "api.moa.works", api.Host())

	u, err := url.Parse("https://api.moa.works")
	require.NoError(t, err)
	assert.Equal(t, u.Host, api.Host())
}
