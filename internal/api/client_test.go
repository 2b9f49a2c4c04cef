package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	t.Run("default base url", func(t *testing.T) {
		c, err := New("")
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, c.BaseURL())
	})

	t.Run("trailing slash trimmed", func(t *testing.T) {
		c, err := New("http://example.test:8080/")
		require.NoError(t, err)
		assert.Equal(t, "http://example.test:8080", c.BaseURL())
	})

	t.Run("rejects other schemes", func(t *testing.T) {
		_, err := New("ftp://example.test")
		require.Error(t, err)
	})

	t.Run("rejects missing host", func(t *testing.T) {
		_, err := New("http://")
		require.Error(t, err)
	})
}

func TestList(t *testing.T) {
	t.Run("normalizes payload and sends accept header", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			assert.Equal(t, "/todos", r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			io.WriteString(w, `[{"id":"1","title":"Buy milk"},{"todo_id":2,"task":"Walk dog"}]`)
		})

		tasks, dropped, err := c.List(context.Background())
		require.NoError(t, err)
		assert.Empty(t, dropped)
		assert.Equal(t, []string{"1", "2"}, tasks.IDs())
		assert.Equal(t, "Buy milk", tasks[0].Text)
		assert.Equal(t, "Walk dog", tasks[1].Text)
	})

	t.Run("reports duplicate ids", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[{"id":"1"},{"id":"1"}]`)
		})
		tasks, dropped, err := c.List(context.Background())
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
		assert.Equal(t, []string{"1"}, dropped)
	})

	t.Run("non-2xx is HTTPError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
		})
		_, _, err := c.List(context.Background())
		var he *HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, 500, he.Status)
		assert.Equal(t, "Internal Server Error", he.StatusText)
		assert.Equal(t, "500 Internal Server Error", he.Error())
		assert.True(t, IsStatus(err, 500))
	})

	t.Run("non-array is malformed", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"todos":[]}`)
		})
		_, _, err := c.List(context.Background())
		var me *MalformedResponseError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, "list", me.Op)
	})

	t.Run("unreachable backend is NetworkError", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(url)
		require.NoError(t, err)
		_, _, err = c.List(context.Background())
		var ne *NetworkError
		require.ErrorAs(t, err, &ne)
		assert.Equal(t, "list", ne.Op)
	})

	t.Run("cancelled context is NetworkError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `[]`)
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, _, err := c.List(ctx)
		var ne *NetworkError
		require.ErrorAs(t, err, &ne)
		assert.True(t, errors.Is(err, context.Canceled))
	})

	t.Run("timeout option", func(t *testing.T) {
		release := make(chan struct{})
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		t.Cleanup(func() { close(release) })

		c, err := New(srv.URL, WithTimeout(50*time.Millisecond))
		require.NoError(t, err)
		_, _, err = c.List(context.Background())
		var ne *NetworkError
		require.ErrorAs(t, err, &ne)
	})
}

func TestCreate(t *testing.T) {
	t.Run("posts text and normalizes the echo", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, map[string]string{"text": "Walk dog"}, body)
			w.WriteHeader(http.StatusCreated)
			io.WriteString(w, `{"id":"2","text":"Walk dog"}`)
		})

		task, err := c.Create(context.Background(), "Walk dog")
		require.NoError(t, err)
		assert.Equal(t, "2", task.ID)
		assert.Equal(t, "Walk dog", task.Text)
		assert.False(t, task.Placeholder)
	})

	t.Run("falls back to submitted text", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"_id":"abc"}`)
		})
		task, err := c.Create(context.Background(), "Feed cat")
		require.NoError(t, err)
		assert.Equal(t, "abc", task.ID)
		assert.Equal(t, "Feed cat", task.Text)
	})

	t.Run("no id in echo yields placeholder", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `{"ok":true}`)
		})
		task, err := c.Create(context.Background(), "x")
		require.NoError(t, err)
		assert.True(t, task.Placeholder)
	})

	t.Run("unparseable body is malformed", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			io.WriteString(w, `created!`)
		})
		_, err := c.Create(context.Background(), "x")
		var me *MalformedResponseError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, "create", me.Op)
	})

	t.Run("non-2xx", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		})
		_, err := c.Create(context.Background(), "x")
		assert.True(t, IsStatus(err, http.StatusBadRequest))
	})
}

func TestDelete(t *testing.T) {
	t.Run("escapes the id", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			assert.Equal(t, "/todos/a%2Fb%20c", r.URL.EscapedPath())
			io.WriteString(w, `{"deleted":true}`)
		})
		require.NoError(t, c.Delete(context.Background(), "a/b c"))
	})

	t.Run("ignores body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		require.NoError(t, c.Delete(context.Background(), "1"))
	})

	t.Run("404", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		})
		err := c.Delete(context.Background(), "1")
		var he *HTTPError
		require.ErrorAs(t, err, &he)
		assert.Equal(t, http.MethodDelete, he.Method)
		assert.Equal(t, "/todos/1", he.Path)
		assert.Contains(t, he.Error(), "404")
	})
}
