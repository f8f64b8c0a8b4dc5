// Command smoke probes a running API instance and reports per-endpoint
// status. Intended for post-deploy checks; endpoints needing auth are
// probed with the token passed via -token.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type target struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Auth     bool   `json:"auth"`
	Expect   int    `json:"expect"`
	Critical bool   `json:"critical"`
}

type config struct {
	Targets []target `json:"targets"`
}

type result struct {
	Target   target
	Status   int
	OK       bool
	Err      error
	Duration time.Duration
}

func main() {
	var (
		base        string
		token       string
		targetsPath string
		timeout     time.Duration
	)

	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&token, "token", "", "Bearer token for authenticated endpoints")
	flag.StringVar(&targetsPath, "targets", filepath.Join("scripts", "smoke", "targets.json"), "Path to JSON targets file")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "Per-request timeout")
	flag.Parse()

	cfg, err := loadConfig(targetsPath)
	if err != nil {
		log.Fatalf("load targets: %v", err)
	}

	client := &http.Client{Timeout: timeout}
	var failedCritical bool

	for _, tgt := range cfg.Targets {
		res := probe(client, base, token, tgt)
		report(res)
		if !res.OK && tgt.Critical {
			failedCritical = true
		}
	}

	if failedCritical {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("no targets in %s", path)
	}
	return &cfg, nil
}

func probe(client *http.Client, base, token string, tgt target) result {
	req, err := http.NewRequest(tgt.Method, base+tgt.Path, nil)
	if err != nil {
		return result{Target: tgt, Err: err}
	}
	if tgt.Auth && token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)
	if err != nil {
		return result{Target: tgt, Err: err, Duration: duration}
	}
	defer resp.Body.Close()

	expect := tgt.Expect
	if expect == 0 {
		expect = http.StatusOK
	}

	return result{
		Target:   tgt,
		Status:   resp.StatusCode,
		OK:       resp.StatusCode == expect,
		Duration: duration,
	}
}

func report(res result) {
	label := "ok"
	if !res.OK {
		label = "FAIL"
	}
	if res.Err != nil {
		fmt.Printf("%-4s %-6s %-40s error: %v\n", label, res.Target.Method, res.Target.Path, res.Err)
		return
	}
	fmt.Printf("%-4s %-6s %-40s status=%d duration=%s\n", label, res.Target.Method, res.Target.Path, res.Status, res.Duration)
}
