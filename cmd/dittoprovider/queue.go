package main

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-resty/resty/v2"
	"github.com/marmos91/dittoprovider/pkg/item"
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect and modify the pending update queue of a running server",
	Long: `Queue talks to a running "dittoprovider serve" instance and manages
its pending update queue: the descriptors waiting to be delivered to the
host.`,
}

var queueListCmd = &cobra.Command{
	Use:   "list",
	Short: "List queued updates",
	Args:  cobra.NoArgs,
	RunE:  runQueueList,
}

var queuePushCmd = &cobra.Command{
	Use:   "push <account> <fileID>",
	Short: "Materialize a record and queue the result",
	Args:  cobra.ExactArgs(2),
	RunE:  runQueuePush,
}

var queueDrainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Return and clear all queued updates",
	Args:  cobra.NoArgs,
	RunE:  runQueueDrain,
}

var queueRemoveCmd = &cobra.Command{
	Use:   "remove <identifier>",
	Short: "Drop the queued update for one item",
	Args:  cobra.ExactArgs(1),
	RunE:  runQueueRemove,
}

var (
	queueServer  string
	queueOutput  string
	queueTimeout time.Duration
)

func init() {
	queueCmd.PersistentFlags().StringVarP(&queueServer, "server", "s", "http://127.0.0.1:8080", "Base URL of the running server")
	queueCmd.PersistentFlags().StringVarP(&queueOutput, "output", "o", "table", "Output format: table, json, yaml")
	queueCmd.PersistentFlags().DurationVar(&queueTimeout, "timeout", 10*time.Second, "Request timeout")

	queueCmd.AddCommand(queueListCmd)
	queueCmd.AddCommand(queuePushCmd)
	queueCmd.AddCommand(queueDrainCmd)
	queueCmd.AddCommand(queueRemoveCmd)
}

// pendingList mirrors the server's pending queue response.
type pendingList struct {
	Count int                `json:"count"`
	Items []*item.Descriptor `json:"items"`
}

// apiError mirrors the server's error body.
type apiError struct {
	Error string `json:"error"`
}

type enqueueBody struct {
	Account string `json:"account"`
	FileID  string `json:"file_id"`
}

func runQueueList(cmd *cobra.Command, args []string) error {
	var list pendingList
	if err := queueRequest(http.MethodGet, "/v1/pending", nil, http.StatusOK, &list); err != nil {
		return err
	}
	return printPending(list)
}

func runQueuePush(cmd *cobra.Command, args []string) error {
	var d item.Descriptor
	body := enqueueBody{Account: args[0], FileID: args[1]}
	if err := queueRequest(http.MethodPost, "/v1/pending", body, http.StatusAccepted, &d); err != nil {
		return err
	}
	return printDescriptor(queueOutput, &d)
}

func runQueueDrain(cmd *cobra.Command, args []string) error {
	var list pendingList
	if err := queueRequest(http.MethodPost, "/v1/pending/drain", nil, http.StatusOK, &list); err != nil {
		return err
	}
	return printPending(list)
}

func runQueueRemove(cmd *cobra.Command, args []string) error {
	path := "/v1/pending/" + url.PathEscape(args[0])
	if err := queueRequest(http.MethodDelete, path, nil, http.StatusNoContent, nil); err != nil {
		return err
	}
	fmt.Printf("Removed pending update for %s\n", args[0])
	return nil
}

func printPending(list pendingList) error {
	if strings.EqualFold(queueOutput, "table") {
		fmt.Printf("%s pending update(s)\n", humanize.Comma(int64(list.Count)))
		if list.Count == 0 {
			return nil
		}
		fmt.Println()
	}
	return printDescriptors(queueOutput, list.Items)
}

// newQueueClient returns a client for the server named by --server.
func newQueueClient() *resty.Client {
	return resty.New().
		SetBaseURL(strings.TrimRight(queueServer, "/")).
		SetTimeout(queueTimeout).
		SetHeader("Accept", "application/json")
}

// queueRequest sends one request and decodes the JSON response into out
// when out is non-nil. Any status other than wantStatus is an error.
func queueRequest(method, path string, body any, wantStatus int, out any) error {
	var apiErr apiError
	req := newQueueClient().R().SetError(&apiErr)
	if body != nil {
		req.SetBody(body)
	}
	if out != nil {
		req.SetResult(out)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", queueServer, err)
	}

	if resp.StatusCode() != wantStatus {
		if apiErr.Error != "" {
			return fmt.Errorf("server returned %s: %s", resp.Status(), apiErr.Error)
		}
		return fmt.Errorf("server returned %s", resp.Status())
	}
	return nil
}
