package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/immich-screens/internal/shared"
	tu "github.com/desertthunder/immich-screens/internal/testing"
	"github.com/urfave/cli/v3"
)

// fakeImmich is an in-memory Immich server covering the endpoints the
// organizer touches.
type fakeImmich struct {
	albums   map[string]string // name -> id
	added    map[string][]string
	archived []string
	searched int
}

func newFakeImmich() *fakeImmich {
	return &fakeImmich{
		albums: map[string]string{},
		added:  map[string][]string{},
	}
}

func (f *fakeImmich) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /server-info/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"major":1,"minor":118,"patch":0}`))
	})

	mux.HandleFunc("POST /search/metadata", func(w http.ResponseWriter, r *http.Request) {
		f.searched++
		w.Write([]byte(`{"assets":{"items":[
			{"id":"asset1","exifInfo":{"exposureTime":null}},
			{"id":"asset2","exifInfo":{"exposureTime":"1/60"}},
			{"id":"asset3","exifInfo":{"exposureTime":null}}
		]}}`))
	})

	mux.HandleFunc("GET /albums", func(w http.ResponseWriter, r *http.Request) {
		list := []map[string]string{}
		for name, id := range f.albums {
			list = append(list, map[string]string{"id": id, "albumName": name})
		}
		json.NewEncoder(w).Encode(list)
	})

	mux.HandleFunc("POST /albums", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode create album body: %v", err)
		}
		id := "alb-" + body["albumName"]
		f.albums[body["albumName"]] = id
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": id})
	})

	mux.HandleFunc("PUT /albums/{id}/assets", func(w http.ResponseWriter, r *http.Request) {
		var body map[string][]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode add assets body: %v", err)
		}
		albumID := r.PathValue("id")
		results := []map[string]any{}
		for _, id := range body["ids"] {
			f.added[albumID] = append(f.added[albumID], id)
			results = append(results, map[string]any{"id": id, "success": true})
		}
		json.NewEncoder(w).Encode(results)
	})

	mux.HandleFunc("PUT /assets/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.archived = append(f.archived, r.PathValue("id"))
		w.Write([]byte(`{"isArchived":true}`))
	})

	return mux
}

func testApp(runner *Runner) *cli.Command {
	return &cli.Command{
		Name:     "immich-screens",
		Commands: runner.register(),
	}
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil httpClient uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{HTTPClient: nil})

			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)

			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)

			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")

			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
			}
		}
	})
}

func TestRunCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("unattended run creates the album and adds screenshots", func(t *testing.T) {
		fake := newFakeImmich()
		server := httptest.NewServer(fake.handler(t))
		defer server.Close()

		runner := NewRunner(RunnerOpts{
			Logger: shared.NewLogger(io.Discard),
			Output: &bytes.Buffer{},
		})

		err := testApp(runner).Run(ctx, []string{
			"immich-screens", "run",
			"--server", server.URL,
			"--api-key", "secret",
			"--unattended",
			"Screenshots",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		albumID, ok := fake.albums["Screenshots"]
		if !ok {
			t.Fatal("expected the album to be created")
		}

		added := fake.added[albumID]
		if len(added) != 2 || added[0] != "asset1" || added[1] != "asset3" {
			t.Errorf("expected [asset1 asset3] added, got %v", added)
		}
		if len(fake.archived) != 0 {
			t.Errorf("expected no archive calls, got %v", fake.archived)
		}
		if fake.searched == 0 {
			t.Error("expected at least one search call")
		}
	})

	t.Run("archive flag archives matched assets", func(t *testing.T) {
		fake := newFakeImmich()
		server := httptest.NewServer(fake.handler(t))
		defer server.Close()

		runner := NewRunner(RunnerOpts{
			Logger: shared.NewLogger(io.Discard),
			Output: &bytes.Buffer{},
		})
		runner.config.Organizer.ArchiveRate = 10000

		err := testApp(runner).Run(ctx, []string{
			"immich-screens", "run",
			"--server", server.URL,
			"--api-key", "secret",
			"--unattended",
			"--archive-screens",
			"Screenshots",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(fake.archived) != 2 {
			t.Errorf("expected 2 archive calls, got %v", fake.archived)
		}
	})

	t.Run("second run adds nothing new", func(t *testing.T) {
		fake := newFakeImmich()
		server := httptest.NewServer(fake.handler(t))
		defer server.Close()

		runner := NewRunner(RunnerOpts{
			Logger: shared.NewLogger(io.Discard),
			Output: &bytes.Buffer{},
		})

		args := []string{
			"immich-screens", "run",
			"--server", server.URL,
			"--api-key", "secret",
			"--unattended",
			"Screenshots",
		}

		if err := testApp(runner).Run(ctx, args); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		if err := testApp(runner).Run(ctx, args); err != nil {
			t.Fatalf("second run failed: %v", err)
		}

		if len(fake.albums) != 1 {
			t.Errorf("expected a single album, got %v", fake.albums)
		}
	})

	t.Run("missing album name", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})

		err := testApp(runner).Run(ctx, []string{
			"immich-screens", "run",
			"--server", "https://immich.example.com/api",
			"--api-key", "secret",
			"--unattended",
		})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("missing server URL", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})

		err := testApp(runner).Run(ctx, []string{
			"immich-screens", "run", "--unattended", "Screenshots",
		})
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Fatalf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("invalid log level", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(io.Discard)})

		err := testApp(runner).Run(ctx, []string{
			"immich-screens", "run",
			"--server", "https://immich.example.com/api",
			"--api-key", "secret",
			"--log-level", "chatty",
			"--unattended",
			"Screenshots",
		})
		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Fatalf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestVersionCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("plain output", func(t *testing.T) {
		fake := newFakeImmich()
		server := httptest.NewServer(fake.handler(t))
		defer server.Close()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Logger: shared.NewLogger(io.Discard),
			Output: output,
		})

		err := testApp(runner).Run(ctx, []string{
			"immich-screens", "version",
			"--server", server.URL,
			"--api-key", "secret",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !strings.Contains(output.String(), "1.118.0") {
			t.Errorf("expected version in output, got %q", output.String())
		}
	})

	t.Run("json output", func(t *testing.T) {
		fake := newFakeImmich()
		server := httptest.NewServer(fake.handler(t))
		defer server.Close()

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{
			Logger: shared.NewLogger(io.Discard),
			Output: output,
		})

		err := testApp(runner).Run(ctx, []string{
			"immich-screens", "version",
			"--server", server.URL,
			"--api-key", "secret",
			"--json",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		var decoded map[string]any
		if err := json.Unmarshal(output.Bytes(), &decoded); err != nil {
			t.Fatalf("expected valid JSON, got %q", output.String())
		}
		if decoded["detected"] != true {
			t.Errorf("expected detected=true, got %v", decoded)
		}
	})
}

func TestAlbumsCommand(t *testing.T) {
	fake := newFakeImmich()
	fake.albums["Screenshots"] = "alb-Screenshots"
	server := httptest.NewServer(fake.handler(t))
	defer server.Close()

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Logger: shared.NewLogger(io.Discard),
		Output: output,
	})

	err := testApp(runner).Run(context.Background(), []string{
		"immich-screens", "albums",
		"--server", server.URL,
		"--api-key", "secret",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if !strings.Contains(output.String(), "Screenshots") {
		t.Errorf("expected album listing, got %q", output.String())
	}
}
