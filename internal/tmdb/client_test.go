package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/filmatch/filmatch/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.TMDBConfig{
		APIKey:              "test-key",
		BaseURL:             serverURL,
		Timeout:             5,
		RequestsPerSecond:   1000,
		RetryAttempts:       3,
		RetryInitialDelayMS: 1,
	}, zerolog.Nop())
}

func TestSearchMovies(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("query"); got != "heat" {
			t.Errorf("query = %q, want %q", got, "heat")
		}
		if got := r.URL.Query().Get("api_key"); got != "test-key" {
			t.Errorf("api_key = %q, want %q", got, "test-key")
		}
		fmt.Fprint(w, `{"page":1,"results":[{"id":949,"title":"Heat","original_title":"Heat","release_date":"1995-12-15","original_language":"en","popularity":50.5}],"total_pages":1,"total_results":1}`)
	}))
	defer server.Close()

	results, err := newTestClient(server.URL).SearchMovies(context.Background(), "heat")
	if err != nil {
		t.Fatalf("SearchMovies: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].ID != 949 || results[0].Title != "Heat" {
		t.Errorf("unexpected result %+v", results[0])
	}
	if results[0].Year() != 1995 {
		t.Errorf("Year() = %d, want 1995", results[0].Year())
	}
}

func TestSearchMoviesMissingAPIKey(t *testing.T) {
	client := NewClient(config.TMDBConfig{BaseURL: "http://unused"}, zerolog.Nop())

	_, err := client.SearchMovies(context.Background(), "heat")
	if !errors.Is(err, ErrAPIKeyMissing) {
		t.Errorf("err = %v, want ErrAPIKeyMissing", err)
	}
}

func TestSearchPerson(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/person" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"page":1,"results":[{"id":7,"name":"Andrei Tarkovsky","known_for_department":"Directing"}]}`)
	}))
	defer server.Close()

	results, err := newTestClient(server.URL).SearchPerson(context.Background(), "tarkovsky")
	if err != nil {
		t.Fatalf("SearchPerson: %v", err)
	}
	if len(results) != 1 || results[0].ID != 7 {
		t.Fatalf("unexpected results %+v", results)
	}
}

func TestGetPersonCredits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/person/7/movie_credits" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"id":7,"cast":[{"id":100,"title":"Cameo Film","character":"Self"}],"crew":[{"id":200,"title":"Stalker","release_date":"1979-05-25","job":"Director","department":"Directing"}]}`)
	}))
	defer server.Close()

	credits, err := newTestClient(server.URL).GetPersonCredits(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetPersonCredits: %v", err)
	}
	if len(credits.Cast) != 1 || len(credits.Crew) != 1 {
		t.Fatalf("unexpected credits %+v", credits)
	}
	if credits.Crew[0].Job != "Director" || credits.Crew[0].Title != "Stalker" {
		t.Errorf("unexpected crew credit %+v", credits.Crew[0])
	}
	if credits.Crew[0].Year() != 1979 {
		t.Errorf("Year() = %d, want 1979", credits.Crew[0].Year())
	}
}

func TestGetMovieDetails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/949" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("append_to_response"); got != "credits" {
			t.Errorf("append_to_response = %q, want credits", got)
		}
		fmt.Fprint(w, `{"id":949,"title":"Heat","runtime":170,"original_language":"en","spoken_languages":[{"iso_639_1":"en","name":"English"}],"genres":[{"id":80,"name":"Crime"}],"credits":{"cast":[{"id":1,"name":"Al Pacino","order":0}],"crew":[{"id":2,"name":"Michael Mann","job":"Director","department":"Directing"}]}}`)
	}))
	defer server.Close()

	details, err := newTestClient(server.URL).GetMovieDetails(context.Background(), 949)
	if err != nil {
		t.Fatalf("GetMovieDetails: %v", err)
	}
	if details.Runtime != 170 {
		t.Errorf("Runtime = %d, want 170", details.Runtime)
	}
	if len(details.Credits.Crew) != 1 || details.Credits.Crew[0].Name != "Michael Mann" {
		t.Errorf("unexpected crew %+v", details.Credits.Crew)
	}
}

func TestDoRequestStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"not found", http.StatusNotFound, `{"status_code":34,"status_message":"not found"}`, ErrNotFound},
		{"unauthorized", http.StatusUnauthorized, `{"status_code":7,"status_message":"invalid key"}`, ErrAPIError},
		{"server error", http.StatusInternalServerError, ``, ErrAPIError},
		{"rate limited", http.StatusTooManyRequests, ``, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			client.config.RetryAttempts = 1

			_, err := client.GetMovieDetails(context.Background(), 1)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDoRequestRetriesTransientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"page":1,"results":[]}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SearchMovies(context.Background(), "heat")
	if err != nil {
		t.Fatalf("SearchMovies: %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestDoRequestDoesNotRetryInvalidKey(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"status_code":7,"status_message":"Invalid API key"}`)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).SearchMovies(context.Background(), "heat")
	if !errors.Is(err, ErrAPIError) {
		t.Fatalf("err = %v, want ErrAPIError", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1 (no retry on auth failure)", calls)
	}
}
