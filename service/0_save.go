package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/fulldump/apitest"

	"github.com/fulldump/slotpool/utils"
)

const exampleHost = "localhost:8080"

// Save writes a markdown page with a curl example and the raw exchange of
// response when API_EXAMPLES_PATH is set.
func Save(response *apitest.Response, title, description string) {

	examplesPath := os.Getenv("API_EXAMPLES_PATH")
	if examplesPath == "" {
		return
	}

	request := response.Request
	requestBody := formatBody(response.BodyRequestString())

	query := ""
	if request.URL.RawQuery != "" {
		query = "?" + request.URL.RawQuery
	}

	s := &strings.Builder{}

	fmt.Fprintf(s, "# %s\n", title)
	fmt.Fprintf(s, "%s\n", cropTabs(description))

	s.WriteString("Curl example:\n\n```sh\n")
	s.WriteString("curl")
	if request.Method != http.MethodGet {
		s.WriteString(" -X " + request.Method)
	}
	fmt.Fprintf(s, " \"http://%s%s%s\"", exampleHost, request.URL.Path, query)
	for _, k := range utils.GetKeys(map[string][]string(request.Header)) {
		for _, v := range request.Header[k] {
			fmt.Fprintf(s, " \\\n-H \"%s: %s\"", k, v)
		}
	}
	if requestBody != "" {
		fmt.Fprintf(s, " \\\n--data-binary '%s'", requestBody)
	}
	s.WriteString("\n```\n\n\n")

	s.WriteString("HTTP request/response example:\n\n```http\n")

	fmt.Fprintf(s, "%s %s%s %s\n", request.Method, request.URL.Path, query, request.Proto)
	fmt.Fprintf(s, "Host: %s\n", exampleHost)
	for _, k := range utils.GetKeys(map[string][]string(request.Header)) {
		for _, v := range request.Header[k] {
			fmt.Fprintf(s, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintf(s, "\n%s\n\n", requestBody)

	fmt.Fprintf(s, "%s %s\n", response.Proto, response.Status)
	for _, k := range utils.GetKeys(map[string][]string(response.Header)) {
		if k == "Date" {
			s.WriteString("Date: Sun, 18 Oct 2026 10:00:00 GMT\n")
			continue
		}
		for _, v := range response.Header[k] {
			fmt.Fprintf(s, "%s: %s\n", k, v)
		}
	}
	fmt.Fprintf(s, "\n%s\n```\n\n\n", formatBody(response.BodyString()))

	filename := strings.ReplaceAll(strings.ToLower(title), " ", "_") + ".md"
	p := path.Join(examplesPath, path.Clean(filename))
	fmt.Println("Saving", p)
	if err := os.WriteFile(p, []byte(s.String()), 0666); err != nil {
		fmt.Println("Saving err:", err)
	}
}

// formatBody indents a single JSON value and leaves NDJSON one value per
// line. Anything else is returned as is.
func formatBody(body string) string {

	body = strings.TrimSpace(body)

	indented := &bytes.Buffer{}
	if err := json.Indent(indented, []byte(body), "", "    "); err == nil {
		return indented.String()
	}

	lines := strings.Split(body, "\n")
	for i, line := range lines {
		compact := &bytes.Buffer{}
		if err := json.Compact(compact, []byte(line)); err != nil {
			return body
		}
		lines[i] = compact.String()
	}
	return strings.Join(lines, "\n")
}

// cropTabs removes the indentation shared by every line of a raw string
// literal written inside a test.
func cropTabs(d string) string {

	lines := strings.Split(d, "\n")

	first, last := 0, len(lines)
	if len(lines) > 2 {
		first++
		last--
	}

	minTabs := -1
	for _, line := range lines[first:last] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		tabs := len(line) - len(strings.TrimLeft(line, "\t"))
		if minTabs < 0 || tabs < minTabs {
			minTabs = tabs
		}
	}
	if minTabs <= 0 {
		return d
	}

	prefix := strings.Repeat("\t", minTabs)
	for i, line := range lines {
		lines[i] = strings.TrimPrefix(line, prefix)
	}

	return strings.Join(lines, "\n")
}
