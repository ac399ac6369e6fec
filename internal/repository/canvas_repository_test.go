package repository

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/peach-brawl/pkg/errors"
)

func TestCanvasRepositoryListCoursesFollowsPagination(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/v1/courses", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2&per_page=100>; rel="next", <%s/api/v1/courses?page=2>; rel="last"`, srv.URL, srv.URL))
			_, _ = w.Write([]byte(`[{"id":1,"name":"Algorithms","course_code":"CS201","term":{"id":9,"name":"Spring 2024"}}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":2,"course_code":"ART1"}]`))
	}))
	defer srv.Close()

	repo := NewCanvasRepository(srv.URL+"/", "secret", time.Second, nil)
	courses, err := repo.ListCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, "Algorithms", *courses[0].Name)
	assert.Equal(t, "Spring 2024", courses[0].Term.Name)
	assert.Nil(t, courses[1].Name)
	assert.Nil(t, courses[1].Term)
}

func TestCanvasRepositoryListAssignments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/courses/42/assignments", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":7,"name":"HW1","due_at":"2024-05-01T10:00:00Z"},{"id":8,"name":"Reading","due_at":null}]`))
	}))
	defer srv.Close()

	repo := NewCanvasRepository(srv.URL, "secret", time.Second, nil)
	assignments, err := repo.ListAssignments(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "2024-05-01T10:00:00Z", *assignments[0].DueAt)
	assert.Nil(t, assignments[1].DueAt)
}

func TestCanvasRepositoryStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	repo := NewCanvasRepository(srv.URL, "bad", time.Second, nil)
	_, err := repo.CurrentUser(context.Background())
	assert.True(t, errors.Is(err, appErrors.ErrCanvasUnavailable))
}

func TestNextLink(t *testing.T) {
	assert.Equal(t, "https://c/x?page=3", nextLink(`<https://c/x?page=1>; rel="prev", <https://c/x?page=3>; rel="next"`))
	assert.Equal(t, "", nextLink(`<https://c/x?page=1>; rel="first"`))
	assert.Equal(t, "", nextLink(""))
}

func TestCanvasRepositoryRefusesForeignNextLink(t *testing.T) {
	var foreignHits int32
	var leaked atomic.Value
	foreign := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&foreignHits, 1)
		leaked.Store(r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer foreign.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2>; rel="next"`, foreign.URL))
		_, _ = w.Write([]byte(`[{"id":1,"course_code":"CS201"}]`))
	}))
	defer srv.Close()

	repo := NewCanvasRepository(srv.URL, "secret", time.Second, nil)
	courses, err := repo.ListCourses(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrCanvasUnavailable))
	assert.Nil(t, courses)
	assert.Zero(t, atomic.LoadInt32(&foreignHits))
	assert.Nil(t, leaked.Load(), "token must not reach another host")
}

func TestCanvasRepositoryFollowsRelativeNextLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", `</api/v1/courses/42/assignments?page=2>; rel="next"`)
			_, _ = w.Write([]byte(`[{"id":7,"name":"HW1"}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id":8,"name":"HW2"}]`))
	}))
	defer srv.Close()

	repo := NewCanvasRepository(srv.URL, "secret", time.Second, nil)
	assignments, err := repo.ListAssignments(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, assignments, 2)
	assert.Equal(t, "HW2", assignments[1].Name)
}

func TestFollowLink(t *testing.T) {
	current, err := url.Parse("https://school.instructure.com/api/v1/courses?page=1")
	require.NoError(t, err)

	next, err := followLink(current, "")
	require.NoError(t, err)
	assert.Empty(t, next)

	next, err = followLink(current, "https://SCHOOL.instructure.com/api/v1/courses?page=2")
	require.NoError(t, err)
	assert.Equal(t, "https://SCHOOL.instructure.com/api/v1/courses?page=2", next)

	next, err = followLink(current, "/api/v1/courses?page=2")
	require.NoError(t, err)
	assert.Equal(t, "https://school.instructure.com/api/v1/courses?page=2", next)

	for _, link := range []string{
		"https://evil.example/api/v1/courses?page=2",
		"http://school.instructure.com/api/v1/courses?page=2",
		"https://school.instructure.com:8443/api/v1/courses?page=2",
		"//evil.example/steal",
	} {
		_, err := followLink(current, link)
		assert.True(t, errors.Is(err, appErrors.ErrCanvasUnavailable), link)
	}
}
