package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"
)

var (
	baseURL string
	timeout time.Duration
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "batchledger-cli",
		Short: "BatchLedger CLI tool",
		Long:  `A command line interface for interacting with the BatchLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the BatchLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	// Batch commands
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Batch operations",
	}

	var batchFile string
	submitCmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit a batch of transactions from a JSON file",
		Run: func(cmd *cobra.Command, args []string) {
			submitBatch(batchFile)
		},
	}
	submitCmd.Flags().StringVarP(&batchFile, "file", "f", "", "JSON file with the batch payload (default: stdin)")

	statusCmd := &cobra.Command{
		Use:   "status <batch-id>",
		Short: "Show a batch status snapshot",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			showBatchStatus(args[0])
		},
	}

	var waitFor time.Duration
	waitCmd := &cobra.Command{
		Use:   "wait <batch-id>",
		Short: "Poll a batch until it completes",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			waitForBatch(args[0], waitFor)
		},
	}
	waitCmd.Flags().DurationVar(&waitFor, "for", time.Minute, "Maximum time to wait for completion")

	batchCmd.AddCommand(submitCmd, statusCmd, waitCmd)
	rootCmd.AddCommand(batchCmd)

	// Audit commands
	auditCmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit trail operations",
	}

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify audit chain integrity",
		Run: func(cmd *cobra.Command, args []string) {
			verifyChain()
		},
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Dump the audit chain in human-readable form",
		Run: func(cmd *cobra.Command, args []string) {
			exportChain()
		},
	}

	auditCmd.AddCommand(verifyCmd, exportCmd)
	rootCmd.AddCommand(auditCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func submitBatch(file string) {
	var payload []byte

	var err error
	if file == "" {
		payload, err = io.ReadAll(os.Stdin)
	} else {
		payload, err = os.ReadFile(file)
	}
	if err != nil {
		fmt.Printf("Error reading batch payload: %v\n", err)
		os.Exit(1)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(baseURL+"/api/v1/batches", "application/json", bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusAccepted {
		fmt.Printf("Submission FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var result struct {
		BatchID string `json:"batch_id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Batch submitted: %s\n", result.BatchID)
}

type batchStatus struct {
	ID            string `json:"id"`
	Size          int    `json:"size"`
	Processed     int    `json:"processed"`
	Completed     bool   `json:"completed"`
	HasErrors     bool   `json:"has_errors"`
	FailedIndices []int  `json:"failed_indices"`
}

func fetchBatchStatus(id string) (*batchStatus, error) {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/batches/" + id)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var status batchStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return nil, err
	}

	return &status, nil
}

func printBatchStatus(status *batchStatus) {
	fmt.Printf("Batch: %s\n", status.ID)
	fmt.Printf("Size: %d\n", status.Size)
	fmt.Printf("Processed: %d\n", status.Processed)
	fmt.Printf("Completed: %v\n", status.Completed)
	fmt.Printf("Errors: %v\n", status.HasErrors)
	if len(status.FailedIndices) > 0 {
		fmt.Printf("Failed indices: %v\n", status.FailedIndices)
	}
}

func showBatchStatus(id string) {
	status, err := fetchBatchStatus(id)
	if err != nil {
		fmt.Printf("Error fetching batch status: %v\n", err)
		os.Exit(1)
	}

	printBatchStatus(status)
}

func waitForBatch(id string, maxWait time.Duration) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 2 * time.Second
	b.MaxElapsedTime = maxWait

	var status *batchStatus

	err := backoff.Retry(func() error {
		s, err := fetchBatchStatus(id)
		if err != nil {
			return backoff.Permanent(err)
		}

		if !s.Completed {
			return fmt.Errorf("batch %s not completed yet", id)
		}

		status = s

		return nil
	}, b)
	if err != nil {
		fmt.Printf("Wait failed: %v\n", err)
		os.Exit(1)
	}

	printBatchStatus(status)
}

func verifyChain() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/audit/verify")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	var result struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		fmt.Printf("Failed to parse response: %v\n", err)
		os.Exit(1)
	}

	if !result.Valid {
		fmt.Printf("Chain verification FAILED: %s\n", result.Error)
		os.Exit(1)
	}

	fmt.Println("Chain verification PASSED")
}

func exportChain() {
	client := &http.Client{Timeout: timeout}
	resp, err := client.Get(baseURL + "/api/v1/audit/export")
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(os.Stdout, resp.Body); err != nil {
		fmt.Printf("Error reading export: %v\n", err)
		os.Exit(1)
	}
}
