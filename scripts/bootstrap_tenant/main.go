// Command bootstrap_tenant pushes a grade scale and promotion policy to a
// running API instance. Used when onboarding a tenant so aggregation has a
// scale to classify against before the first exam.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

type gradeBand struct {
	Grade         string  `json:"grade"`
	MinPercentage float64 `json:"min_percentage"`
	MaxPercentage float64 `json:"max_percentage"`
	GPA           float64 `json:"gpa"`
	Remarks       string  `json:"remarks,omitempty"`
}

type promotionPolicy struct {
	Mode              string  `json:"mode"`
	Threshold         float64 `json:"threshold"`
	MaxFailedSubjects int     `json:"max_failed_subjects"`
}

type seed struct {
	Bands  []gradeBand      `json:"bands"`
	Policy *promotionPolicy `json:"policy,omitempty"`
}

func main() {
	var (
		baseURL  string
		seedPath string
		token    string
		timeout  time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&seedPath, "seed", filepath.Join("scripts", "bootstrap_tenant", "seed.json"), "Path to JSON seed file")
	flag.StringVar(&token, "token", os.Getenv("ASSESSMENT_API_TOKEN"), "Bearer token of an admin user")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	if token == "" {
		log.Fatal("missing admin token: pass -token or set ASSESSMENT_API_TOKEN")
	}

	data, err := loadSeed(seedPath)
	if err != nil {
		log.Fatalf("failed to load seed: %v", err)
	}

	client := &http.Client{Timeout: timeout}

	if err := put(client, baseURL+"/grade-scale", token, map[string]interface{}{"bands": data.Bands}); err != nil {
		log.Fatalf("grade scale: %v", err)
	}
	fmt.Printf("grade scale replaced (%d bands)\n", len(data.Bands))

	if data.Policy != nil {
		if err := put(client, baseURL+"/promotion-policy", token, data.Policy); err != nil {
			log.Fatalf("promotion policy: %v", err)
		}
		fmt.Printf("promotion policy set (%s, threshold %.1f)\n", data.Policy.Mode, data.Policy.Threshold)
	}
}

func loadSeed(path string) (*seed, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data seed
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if len(data.Bands) == 0 {
		return nil, fmt.Errorf("seed file %s has no grade bands", path)
	}
	return &data, nil
}

func put(client *http.Client, url, token string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, raw)
	}
	return nil
}
