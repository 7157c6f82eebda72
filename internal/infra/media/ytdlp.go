// Package media resolves playable audio streams with the yt-dlp executable.
package media

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"

	"writer_digest_bot/internal/domain/chat"
)

var ErrNoStream = errors.New("extractor returned no stream url")

type runFunc func(ctx context.Context, name string, args ...string) ([]byte, []byte, error)

// Extractor shells out to yt-dlp for the best audio-only format.
type Extractor struct {
	path string
	run  runFunc
}

func NewExtractor(path string) *Extractor {
	if path == "" {
		path = "yt-dlp"
	}
	return &Extractor{path: path, run: execRun}
}

// Resolve accepts a URL or a free-text query. Queries go through ytsearch1.
func (e *Extractor) Resolve(ctx context.Context, query string) (chat.Track, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return chat.Track{}, fmt.Errorf("empty query")
	}
	stdout, stderr, err := e.run(ctx, e.path, buildArgs(query)...)
	if err != nil {
		return chat.Track{}, fmt.Errorf("yt-dlp failed: %w: %s", err, strings.TrimSpace(string(stderr)))
	}
	return parseOutput(stdout)
}

func buildArgs(query string) []string {
	target := query
	if !isURL(query) {
		target = "ytsearch1:" + query
	}
	return []string{
		"--no-playlist",
		"-f", "bestaudio/best",
		"--print", "title",
		"--print", "urls",
		target,
	}
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// parseOutput reads the title line followed by at least one stream url.
func parseOutput(out []byte) (chat.Track, error) {
	var lines []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := sc.Err(); err != nil {
		return chat.Track{}, fmt.Errorf("failed to read yt-dlp output: %w", err)
	}
	if len(lines) < 2 || !isURL(lines[1]) {
		return chat.Track{}, ErrNoStream
	}
	return chat.Track{Title: lines[0], StreamURL: lines[1]}, nil
}

func execRun(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}
