// Loadtest is a concurrent HTTP load generator for the devs board. It hits the
// page repeatedly and reports throughput, latency percentiles and how many
// pages carried the "DB Error" placeholder instead of real names.
//
// Usage:
//
//	go run scripts/loadtest.go -url http://localhost:5000/ -concurrency 10 -requests 1000
//	go run scripts/loadtest.go -requests 5000 -csv results.csv -out summary.json
//
// Features:
//   - Concurrent workers for high throughput testing
//   - Placeholder detection, so a 200 with "DB Error" counts as degraded
//   - CSV output with per-request details
//   - JSON summary with percentiles (p50, p90, p95, p99)
package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const placeholder = "DB Error"

type sample struct {
	idx      int
	status   int
	degraded bool
	duration time.Duration
	err      error
}

func main() {
	var (
		url         = flag.String("url", "http://localhost:5000/", "Target URL")
		concurrency = flag.Int("concurrency", 10, "Number of concurrent workers")
		requests    = flag.Int("requests", 100, "Total number of requests to send")
		timeoutSec  = flag.Int("timeout", 10, "Per-request timeout in seconds")
		outJSON     = flag.String("out", "", "Write JSON summary to this file (optional)")
		outCSV      = flag.String("csv", "", "Write per-request CSV to this file (optional)")
		verbose     = flag.Bool("v", false, "Verbose per-request logging to stdout")
	)
	flag.Parse()

	client := &http.Client{Timeout: time.Duration(*timeoutSec) * time.Second}

	jobs := make(chan int)
	results := make(chan sample, *concurrency)

	var sent int32
	var wg sync.WaitGroup

	testStart := time.Now()

	for i := 0; i < *concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range jobs {
				atomic.AddInt32(&sent, 1)
				s := hit(client, *url, idx)
				if *verbose {
					fmt.Printf("[%d] idx=%d status=%d degraded=%t dur=%v err=%v\n",
						workerID, idx, s.status, s.degraded, s.duration, s.err)
				}
				results <- s
			}
		}(i)
	}

	go func() {
		for i := 0; i < *requests; i++ {
			jobs <- i
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var samples []sample
	for s := range results {
		samples = append(samples, s)
	}
	totalDuration := time.Since(testStart)

	var ok, degraded, failed int
	statusCodes := make(map[int]int)
	latencies := make([]time.Duration, 0, len(samples))
	for _, s := range samples {
		latencies = append(latencies, s.duration)
		switch {
		case s.err != nil:
			failed++
			continue
		case s.status < 200 || s.status > 299:
			failed++
		case s.degraded:
			degraded++
		default:
			ok++
		}
		statusCodes[s.status]++
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	throughput := float64(sent) / totalDuration.Seconds()

	fmt.Println("--- Load Test Summary ---")
	fmt.Printf("Target: %s\n", *url)
	fmt.Printf("Requests: %d  Concurrency: %d\n", *requests, *concurrency)
	fmt.Printf("Total sent: %d  OK: %d  Degraded (%s): %d  Failed: %d\n", sent, ok, placeholder, degraded, failed)
	fmt.Printf("Duration: %v  Throughput: %.2f req/s\n", totalDuration, throughput)

	fmt.Println("\nStatus codes:")
	var scKeys []int
	for k := range statusCodes {
		scKeys = append(scKeys, k)
	}
	sort.Ints(scKeys)
	for _, k := range scKeys {
		fmt.Printf("  %d -> %d\n", k, statusCodes[k])
	}

	if len(latencies) > 0 {
		fmt.Println("\nLatencies:")
		fmt.Printf("  samples=%d min=%v max=%v p50=%v p90=%v p95=%v p99=%v\n",
			len(latencies), latencies[0], latencies[len(latencies)-1],
			percentile(latencies, 0.50), percentile(latencies, 0.90),
			percentile(latencies, 0.95), percentile(latencies, 0.99))
	}

	if *outCSV != "" {
		if err := writeCSV(*outCSV, samples); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write csv file: %v\n", err)
			os.Exit(1)
		}
	}

	if *outJSON != "" {
		report := map[string]interface{}{
			"target":         *url,
			"requests":       *requests,
			"concurrency":    *concurrency,
			"total_sent":     sent,
			"ok":             ok,
			"degraded":       degraded,
			"failed":         failed,
			"duration_ms":    totalDuration.Milliseconds(),
			"throughput_rps": throughput,
			"p50_ms":         percentile(latencies, 0.50).Milliseconds(),
			"p90_ms":         percentile(latencies, 0.90).Milliseconds(),
			"p95_ms":         percentile(latencies, 0.95).Milliseconds(),
			"p99_ms":         percentile(latencies, 0.99).Milliseconds(),
		}

		f, err := os.Create(*outJSON)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to create json file: %v\n", err)
			os.Exit(1)
		}
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.Encode(report)
		f.Close()
		fmt.Printf("\nWrote JSON summary to %s\n", *outJSON)
	}

	// exit with non-zero if the page failed or degraded
	if failed > 0 || degraded > 0 {
		os.Exit(2)
	}
}

func hit(client *http.Client, url string, idx int) sample {
	start := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return sample{idx: idx, duration: time.Since(start), err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	return sample{
		idx:      idx,
		status:   resp.StatusCode,
		degraded: bytes.Contains(body, []byte(placeholder)),
		duration: time.Since(start),
		err:      err,
	}
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	return sorted[int(float64(len(sorted)-1)*p)]
}

func writeCSV(path string, samples []sample) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Write([]string{"idx", "status", "degraded", "duration_ms", "error"})
	for _, s := range samples {
		errText := ""
		if s.err != nil {
			errText = s.err.Error()
		}
		w.Write([]string{
			strconv.Itoa(s.idx),
			strconv.Itoa(s.status),
			strconv.FormatBool(s.degraded),
			fmt.Sprintf("%.3f", float64(s.duration.Microseconds())/1000.0),
			errText,
		})
	}
	w.Flush()
	return w.Error()
}
