// Command recapctl is an interactive console for a running
// recap control API. It speaks the httpapi JSON endpoints:
// inspect and update config, view per-conversation status, and
// trigger manual compaction.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/chzyer/readline"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorDim    = "\033[2m"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr,
			"%sError: %v%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String(
		"addr", "http://127.0.0.1:8135",
		"base URL of the recap control API")
	flag.Parse()

	rl, err := readline.New(
		colorCyan + "recap> " + colorReset)
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	client := &apiClient{
		base: strings.TrimRight(*addr, "/"),
		http: &http.Client{Timeout: 30 * time.Second},
	}

	fmt.Printf("%sConnected to %s%s\n", colorDim, client.base, colorReset)
	printHelp()

	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or interrupt
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.SplitN(line, " ", 2)
		cmd := fields[0]
		arg := ""
		if len(fields) > 1 {
			arg = strings.TrimSpace(fields[1])
		}

		switch cmd {
		case "q", "quit", "exit":
			return nil
		case "help":
			printHelp()
		case "status":
			client.show("GET", "/status", nil)
		case "config":
			client.show("GET", "/config", nil)
		case "set":
			if arg == "" {
				fmt.Printf("%susage: set {\"threshold\": 0.7}%s\n",
					colorYellow, colorReset)
				continue
			}
			client.show("POST", "/config", []byte(arg))
		case "compact":
			if arg == "" {
				fmt.Printf("%susage: compact <json request>%s\n",
					colorYellow, colorReset)
				continue
			}
			client.show("POST", "/compact", []byte(arg))
		default:
			fmt.Printf("%sunknown command %q — try 'help'%s\n",
				colorYellow, cmd, colorReset)
		}
	}
}

func printHelp() {
	fmt.Print(colorDim +
		"commands:\n" +
		"  status              show per-conversation state\n" +
		"  config              show current config\n" +
		"  set <json>          apply a partial config update\n" +
		"  compact <json>      trigger manual compaction\n" +
		"  quit                exit\n" +
		colorReset)
}

type apiClient struct {
	base string
	http *http.Client
}

// show performs the request and pretty-prints the JSON
// response, colored by status.
func (c *apiClient) show(method, path string, body []byte) {
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(body))
	if err != nil {
		fmt.Printf("%s%v%s\n", colorRed, err, colorReset)
		return
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		fmt.Printf("%s%v%s\n", colorRed, err, colorReset)
		return
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("%s%v%s\n", colorRed, err, colorReset)
		return
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, data, "", "  "); err != nil {
		pretty.Write(data)
	}

	color := colorGreen
	if resp.StatusCode >= 400 {
		color = colorRed
	}
	fmt.Printf("%s%s %s%s\n%s\n",
		color, resp.Status, path, colorReset, pretty.String())
}
