// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package test provides helpers shared by the test suites: the test
// configuration, canned statistics documents and fake HTTP servers standing
// in for the upstream API and the proxy.
package test

import (
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jaycherian/covid-dashboard/internal/config"
	"github.com/jaycherian/covid-dashboard/internal/core/model"
)

// StateManager caches the test configuration for the whole test binary.
type StateManager struct {
	once   sync.Once
	config *config.Config
}

var state = &StateManager{}

// HandleErr fails the test when err is set.
func HandleErr(err error, t *testing.T) {
	t.Helper()
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

// FixedTime is the fetch time used by tests that need a stable timestamp.
var FixedTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

// FixedClock returns a clock that always reads FixedTime.
func FixedClock() func() time.Time {
	return func() time.Time { return FixedTime }
}

// GetTestStatisticsText is a well formed upstream document with
// cases 100, deaths 10, recovered 50 and rates 1.0, 0.1, 0.5.
func GetTestStatisticsText() string {
	return model.ExampleSnapshotJSON
}

// GetTestNegativeStatisticsText is well formed JSON with an impossible count.
func GetTestNegativeStatisticsText() string {
	return `{"cases":-1,"deaths":10,"recovered":50,"casesPerOneMillion":1.0,"deathsPerOneMillion":0.1,"recoveredPerOneMillion":0.5}`
}

// FakeServer is an httptest server answering every request with a fixed
// status and body. Hits counts the requests it has served.
type FakeServer struct {
	*httptest.Server
	Hits atomic.Int64

	mu     sync.Mutex
	status int
	body   string
}

// NewFakeServer starts a FakeServer that is closed when t finishes.
func NewFakeServer(t *testing.T, status int, body string) *FakeServer {
	t.Helper()
	f := &FakeServer{status: status, body: body}
	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.Hits.Add(1)
		f.mu.Lock()
		status, body := f.status, f.body
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(f.Close)
	return f
}

// Respond changes what the server answers from now on.
func (f *FakeServer) Respond(status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status, f.body = status, body
}

// moduleRoot walks up from the working directory to the directory holding go.mod.
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found")
		}
		dir = parent
	}
}

// SetupOS points the config loader at the repository's configs directory and
// the "test" runtime, so .env.test.toml overrides .env.toml.
func SetupOS() (err error) {
	root, err := moduleRoot()
	if err != nil {
		return err
	}
	if err = os.Setenv(config.EnvConfigFilePrefix, filepath.Join(root, "configs")); err != nil {
		return err
	}
	return os.Setenv(config.EnvConfigRuntime, "test")
}

// GetConfig loads the test configuration once and returns the cached copy.
func GetConfig() *config.Config {
	state.once.Do(func() {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup environment for test: %v\n", err)
		}
		c, err := config.Load()
		if err != nil {
			log.Fatalf("failed to load test configuration: %v\n", err)
		}
		state.config = c
	})
	return state.config
}
