// Package changelog lists recent commits of the repository that ships the
// signals file.
package changelog

import (
	"bufio"
	"bytes"
	"context"
	"os/exec"
	"strconv"
	"strings"

	apperrors "signal-dashboard/internal/errors"
)

// logFormat renders one commit per line as "<hash> - <subject> (<relative date>)".
const logFormat = "--pretty=format:%h - %s (%cr)"

// Entry is one commit.
type Entry struct {
	Hash    string `json:"hash" yaml:"hash"`
	Subject string `json:"subject" yaml:"subject"`
	When    string `json:"when" yaml:"when"`
}

// String renders the entry the way git printed it.
func (e Entry) String() string {
	if e.When == "" {
		return e.Hash + " - " + e.Subject
	}
	return e.Hash + " - " + e.Subject + " (" + e.When + ")"
}

// Reader runs git log in a repository.
type Reader struct {
	RepoDir    string
	MaxEntries int
}

// NewReader creates a reader for repoDir. maxEntries <= 0 means no limit.
func NewReader(repoDir string, maxEntries int) *Reader {
	return &Reader{RepoDir: repoDir, MaxEntries: maxEntries}
}

// Entries returns commits newest first.
func (r *Reader) Entries(ctx context.Context) ([]Entry, error) {
	args := []string{"log", logFormat}
	if r.MaxEntries > 0 {
		args = append(args, "-n", strconv.Itoa(r.MaxEntries))
	}

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.RepoDir
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, apperrors.Wrapf(apperrors.ErrGitUnavailable, "git log in %s: %s", r.RepoDir, msg)
	}

	return Parse(out.Bytes()), nil
}

// Parse splits git log output in logFormat into entries. Lines that do not
// follow the format keep their text as the subject.
func Parse(out []byte) []Entry {
	var entries []Entry
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		entries = append(entries, parseLine(line))
	}
	return entries
}

func parseLine(line string) Entry {
	hash, rest, ok := strings.Cut(line, " - ")
	if !ok {
		return Entry{Subject: line}
	}
	e := Entry{Hash: hash, Subject: rest}
	if strings.HasSuffix(rest, ")") {
		if open := strings.LastIndex(rest, " ("); open >= 0 {
			e.Subject = rest[:open]
			e.When = rest[open+2 : len(rest)-1]
		}
	}
	return e
}
