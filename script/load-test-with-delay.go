package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRequest is the body of POST /user/:userId/transactions
type TransactionRequest struct {
	Amount string `json:"amount"`
	Type   string `json:"type"`
	Settle bool   `json:"settle"`
}

// TransactionResponse holds the fields the load test reads back
type TransactionResponse struct {
	TransactionID string `json:"transactionId"`
	UserID        string `json:"userId"`
	Type          string `json:"type"`
	Status        string `json:"status"`
	Tokens        string `json:"tokens,omitempty"`
	ResultBalance string `json:"resultBalance,omitempty"`
	ErrorMessage  string `json:"errorMessage,omitempty"`
}

type registerResponse struct {
	UserID  string `json:"userId"`
	Balance string `json:"balance"`
}

type balanceResponse struct {
	Balance string `json:"balance"`
}

// TestResult contains metrics for a single request
type TestResult struct {
	Success      bool
	ResponseTime time.Duration
	StatusCode   int
	Error        error
	UserID       string
	Status       string
	Type         string
	Tokens       decimal.Decimal
}

// TestStats contains aggregated test statistics
type TestStats struct {
	TotalRequests      int
	SuccessfulRequests int
	FailedRequests     int
	TotalTime          time.Duration
	MinResponseTime    time.Duration
	MaxResponseTime    time.Duration
	TotalResponseTime  time.Duration
	ResponseTimes      []time.Duration
	ErrorCounts        map[string]int
	UserStats          map[string]int
	ScenarioStats      map[string]int
	StatusStats        map[string]int
	// net token movement per user computed from DONE responses
	Movement map[string]decimal.Decimal
	Lock     sync.Mutex
}

// TransactionScenario defines a transaction scenario
type TransactionScenario struct {
	Name   string
	Type   string
	Amount string
}

func main() {
	concurrency := flag.Int("c", 5, "Number of concurrent goroutines")
	totalRequests := flag.Int("n", 100, "Total number of requests to make")
	users := flag.Int("u", 3, "Number of accounts to register and distribute load across")
	baseURL := flag.String("url", "http://localhost:8080", "Base URL for the API")
	delayMs := flag.Int("delay", 100, "Delay between requests in milliseconds")
	flag.Parse()

	client := &http.Client{Timeout: 10 * time.Second}

	opening := map[string]decimal.Decimal{}
	var userIDs []string
	for i := 0; i < *users; i++ {
		id, balance, err := register(client, *baseURL)
		if err != nil {
			fmt.Printf("Failed to register account: %v\n", err)
			return
		}
		userIDs = append(userIDs, id)
		opening[id] = balance
	}
	if len(userIDs) == 0 {
		fmt.Println("No accounts registered, nothing to do")
		return
	}

	// Debits are sized so some of them run into insufficient balance
	scenarios := []TransactionScenario{
		{"Credit Small", "CREDIT", "1.00"},
		{"Credit Medium", "CREDIT", "2.50"},
		{"Credit Large", "CREDIT", "5.00"},
		{"Debit Small", "DEBIT", "100"},
		{"Debit Medium", "DEBIT", "400"},
		{"Debit Large", "DEBIT", "900"},
	}

	fmt.Printf("Load testing API across %d accounts\n", len(userIDs))
	fmt.Printf("Transaction scenarios: %d different combinations\n", len(scenarios))
	fmt.Printf("Concurrency: %d goroutines\n", *concurrency)
	fmt.Printf("Total requests: %d\n", *totalRequests)
	fmt.Printf("Delay between requests: %d ms\n", *delayMs)

	stats := &TestStats{
		TotalRequests:   *totalRequests,
		MinResponseTime: time.Hour,
		ErrorCounts:     make(map[string]int),
		ResponseTimes:   make([]time.Duration, 0, *totalRequests),
		UserStats:       make(map[string]int),
		ScenarioStats:   make(map[string]int),
		StatusStats:     make(map[string]int),
		Movement:        make(map[string]decimal.Decimal),
	}
	for _, id := range userIDs {
		stats.UserStats[id] = 0
		stats.Movement[id] = decimal.Zero
	}
	for _, scenario := range scenarios {
		stats.ScenarioStats[scenario.Name] = 0
	}

	results := make(chan TestResult, *totalRequests)
	jobs := make(chan int, *totalRequests)

	var wg sync.WaitGroup
	fmt.Println("Starting worker goroutines...")
	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			worker(client, *baseURL, *delayMs, userIDs, scenarios, jobs, results, stats)
		}()
	}

	go func() {
		for i := 0; i < *totalRequests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for result := range results {
			record(stats, result)
		}
	}()

	startTime := time.Now()
	fmt.Println("Test running...")

	ticker := time.NewTicker(1 * time.Second)
	go func() {
		for range ticker.C {
			stats.Lock.Lock()
			completed := stats.SuccessfulRequests + stats.FailedRequests
			if completed > 0 {
				fmt.Printf("Progress: %d/%d requests completed (%.1f%%)\n",
					completed, stats.TotalRequests, float64(completed)/float64(stats.TotalRequests)*100)
			}
			stats.Lock.Unlock()
		}
	}()

	wg.Wait()
	close(results)
	<-collected
	ticker.Stop()

	stats.TotalTime = time.Since(startTime)

	printResults(stats)
	reconcile(client, *baseURL, opening, stats)
}

func register(client *http.Client, baseURL string) (string, decimal.Decimal, error) {
	body, _ := json.Marshal(map[string]string{
		"email":    fmt.Sprintf("load-%s@example.com", uuid.NewString()),
		"password": "load-test-password",
	})
	resp, err := client.Post(baseURL+"/user", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", decimal.Zero, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return "", decimal.Zero, fmt.Errorf("HTTP status code %d", resp.StatusCode)
	}

	var out registerResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", decimal.Zero, err
	}
	balance, err := decimal.NewFromString(out.Balance)
	if err != nil {
		return "", decimal.Zero, err
	}
	return out.UserID, balance, nil
}

func worker(client *http.Client, baseURL string, delayMs int, userIDs []string,
	scenarios []TransactionScenario, jobs <-chan int, results chan<- TestResult, stats *TestStats) {

	for range jobs {
		if delayMs > 0 {
			time.Sleep(time.Duration(delayMs) * time.Millisecond)
		}

		userID := userIDs[rand.Intn(len(userIDs))]
		scenario := scenarios[rand.Intn(len(scenarios))]

		stats.Lock.Lock()
		stats.UserStats[userID]++
		stats.ScenarioStats[scenario.Name]++
		stats.Lock.Unlock()

		results <- send(client, fmt.Sprintf("%s/user/%s/transactions", baseURL, userID), userID, scenario)
	}
}

func send(client *http.Client, apiURL, userID string, scenario TransactionScenario) TestResult {
	result := TestResult{UserID: userID, Type: scenario.Type}

	jsonData, err := json.Marshal(TransactionRequest{
		Amount: scenario.Amount,
		Type:   scenario.Type,
		Settle: true,
	})
	if err != nil {
		result.Error = err
		return result
	}

	startTime := time.Now()
	resp, err := client.Post(apiURL, "application/json", bytes.NewReader(jsonData))
	result.ResponseTime = time.Since(startTime)
	if err != nil {
		result.Error = err
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	result.Success = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !result.Success {
		result.Error = fmt.Errorf("HTTP status code %d", resp.StatusCode)
		return result
	}

	var txn TransactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&txn); err != nil {
		result.Success = false
		result.Error = fmt.Errorf("decode response: %w", err)
		return result
	}
	result.Status = txn.Status
	if txn.Status == "DONE" {
		result.Tokens, _ = decimal.NewFromString(txn.Tokens)
	}
	return result
}

func record(stats *TestStats, result TestResult) {
	stats.Lock.Lock()
	defer stats.Lock.Unlock()

	if result.Success {
		stats.SuccessfulRequests++
		stats.StatusStats[result.Status]++
		if result.Status == "DONE" {
			delta := result.Tokens
			if result.Type == "DEBIT" {
				delta = delta.Neg()
			}
			stats.Movement[result.UserID] = stats.Movement[result.UserID].Add(delta)
		}
	} else {
		stats.FailedRequests++
		errMsg := "unknown"
		if result.Error != nil {
			errMsg = result.Error.Error()
		}
		stats.ErrorCounts[errMsg]++
	}

	stats.ResponseTimes = append(stats.ResponseTimes, result.ResponseTime)
	stats.TotalResponseTime += result.ResponseTime
	if result.ResponseTime < stats.MinResponseTime {
		stats.MinResponseTime = result.ResponseTime
	}
	if result.ResponseTime > stats.MaxResponseTime {
		stats.MaxResponseTime = result.ResponseTime
	}
}

func printResults(stats *TestStats) {
	rawTps := float64(stats.SuccessfulRequests) / stats.TotalTime.Seconds()
	theoreticalTps := float64(stats.TotalRequests) / stats.TotalTime.Seconds()

	var avgResponseTime time.Duration
	if len(stats.ResponseTimes) > 0 {
		avgResponseTime = stats.TotalResponseTime / time.Duration(len(stats.ResponseTimes))
	}

	var p50, p90, p95, p99 time.Duration
	if len(stats.ResponseTimes) > 0 {
		sorted := make([]time.Duration, len(stats.ResponseTimes))
		copy(sorted, stats.ResponseTimes)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		p50 = sorted[len(sorted)*50/100]
		p90 = sorted[len(sorted)*90/100]
		p95 = sorted[len(sorted)*95/100]
		p99 = sorted[len(sorted)*99/100]
	}

	fmt.Println("\n================= TEST RESULTS =================")
	fmt.Printf("Total Requests:      %d\n", stats.TotalRequests)
	fmt.Printf("Successful Requests: %d (%.1f%%)\n", stats.SuccessfulRequests,
		float64(stats.SuccessfulRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("Failed Requests:     %d (%.1f%%)\n", stats.FailedRequests,
		float64(stats.FailedRequests)/float64(stats.TotalRequests)*100)
	fmt.Printf("Total Test Time:     %.2f seconds\n", stats.TotalTime.Seconds())

	fmt.Println("\n----------------- PERFORMANCE -----------------")
	fmt.Printf("Raw TPS:             %.2f (successful requests / total time)\n", rawTps)
	fmt.Printf("Theoretical TPS:     %.2f (if all requests were successful)\n", theoreticalTps)

	fmt.Println("\n----------------- RESPONSE TIMES -----------------")
	fmt.Printf("Average Response:    %v\n", avgResponseTime)
	fmt.Printf("Minimum Response:    %v\n", stats.MinResponseTime)
	fmt.Printf("Maximum Response:    %v\n", stats.MaxResponseTime)
	fmt.Printf("P50 Response:        %v\n", p50)
	fmt.Printf("P90 Response:        %v\n", p90)
	fmt.Printf("P95 Response:        %v\n", p95)
	fmt.Printf("P99 Response:        %v\n", p99)

	fmt.Println("\n----------------- SETTLEMENT OUTCOMES -----------------")
	for status, count := range stats.StatusStats {
		fmt.Printf("%-10s: %d\n", status, count)
	}

	fmt.Println("\n----------------- SCENARIO DISTRIBUTION -----------------")
	for scenario, count := range stats.ScenarioStats {
		if count > 0 {
			fmt.Printf("%-15s: %d requests (%.1f%%)\n", scenario, count,
				float64(count)/float64(stats.TotalRequests)*100)
		}
	}

	if stats.FailedRequests > 0 {
		fmt.Println("\n----------------- ERROR DISTRIBUTION -----------------")
		for errMsg, count := range stats.ErrorCounts {
			fmt.Printf("%-40s: %d (%.1f%%)\n", errMsg, count,
				float64(count)/float64(stats.TotalRequests)*100)
		}
	}
}

// reconcile checks that every final balance equals the opening balance plus the
// token movement reported by DONE transactions
func reconcile(client *http.Client, baseURL string, opening map[string]decimal.Decimal, stats *TestStats) {
	fmt.Println("\n================= BALANCE RECONCILIATION =================")
	mismatches := 0
	for userID, start := range opening {
		resp, err := client.Get(fmt.Sprintf("%s/user/%s/balance", baseURL, userID))
		if err != nil {
			fmt.Printf("User %s: failed to read balance: %v\n", userID, err)
			mismatches++
			continue
		}
		var out balanceResponse
		err = json.NewDecoder(resp.Body).Decode(&out)
		resp.Body.Close()
		if err != nil {
			fmt.Printf("User %s: failed to decode balance: %v\n", userID, err)
			mismatches++
			continue
		}

		actual, _ := decimal.NewFromString(out.Balance)
		expected := start.Add(stats.Movement[userID])
		if actual.Equal(expected) {
			fmt.Printf("User %s: %s (%d requests) OK\n", userID, actual, stats.UserStats[userID])
		} else {
			fmt.Printf("User %s: balance %s, expected %s\n", userID, actual, expected)
			mismatches++
		}
	}

	if mismatches == 0 {
		fmt.Println("All balances match the settled transactions")
	} else {
		fmt.Printf("%d account(s) do not reconcile\n", mismatches)
	}
	fmt.Println("==========================================================")
}
