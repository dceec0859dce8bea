package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/searchbox/linesearchd/cmd/searchd/internal/client"
)

var queryOpts struct {
	host     string
	port     int
	psk      string
	timeout  time.Duration
	useTLS   bool
	insecure bool
}

var queryCmd = &cobra.Command{
	Use:   "query <term>",
	Short: "Send one search query to a running server",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryOpts.host, "host", "127.0.0.1", "server host")
	queryCmd.Flags().IntVar(&queryOpts.port, "port", 44445, "server port")
	queryCmd.Flags().StringVar(&queryOpts.psk, "psk", "", "pre-shared key; its digest is prepended to the query")
	queryCmd.Flags().DurationVar(&queryOpts.timeout, "timeout", 5*time.Second, "dial and response timeout")
	queryCmd.Flags().BoolVar(&queryOpts.useTLS, "tls", false, "connect over TLS")
	queryCmd.Flags().BoolVar(&queryOpts.insecure, "insecure", false, "accept self-signed server certificates")

	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	response, err := client.Query(client.Options{
		Addr:               fmt.Sprintf("%s:%d", queryOpts.host, queryOpts.port),
		PSK:                queryOpts.psk,
		Timeout:            queryOpts.timeout,
		TLS:                queryOpts.useTLS,
		InsecureSkipVerify: queryOpts.insecure,
	}, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), response)
	return nil
}
