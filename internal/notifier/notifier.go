// Package notifier delivers short user-facing messages such as policy refusals.
package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/logger"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess
)

const trayExecutable = "zentask-tray"

// Sink receives notifications.
type Sink interface {
	Notify(text string) error
}

// Notifier posts to the tray app webhook.
type Notifier struct {
	client  *http.Client
	retries int
	delay   time.Duration
}

var _ Sink = (*Notifier)(nil)

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

func New() *Notifier {
	return &Notifier{
		client:  &http.Client{Timeout: 2 * time.Second},
		retries: constants.NotifyMaxRetries,
		delay:   constants.NotifyRetryDelay,
	}
}

// Notify fails fast when the tray app is not running; delivery errors are retried.
func (n *Notifier) Notify(text string) error {
	dir, err := GetTrayAppConfigDir()
	if err != nil {
		return err
	}
	lock, err := readLockfile(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}
	if err := lock.verify(); err != nil {
		return err
	}

	payload := WebhookPayload{Text: text, DurationMs: constants.NotificationDurationMs}
	for attempt := 1; ; attempt++ {
		err = n.send(lock, payload)
		if err == nil || attempt >= n.retries {
			return err
		}
		logger.Debug("Retrying notification", "attempt", attempt, "error", err)
		time.Sleep(n.delay)
	}
}

// GetTrayAppConfigDir returns the directory holding the tray app lockfile. The
// tray's settings.json may point it elsewhere with lockfile_dir.
func GetTrayAppConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	dir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		return dir, nil
	}
	var store struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &store); err == nil && store.Settings.LockfileDir != "" {
		return store.Settings.LockfileDir, nil
	}
	return dir, nil
}

// lockfile is the tray app's "port|pid|secret" handshake.
type lockfile struct {
	port   int
	pid    int
	secret string
}

func readLockfile(path string) (lockfile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return lockfile{}, errors.New(trayExecutable + " is not running")
	}
	return parseLockfile(string(content))
}

func parseLockfile(content string) (lockfile, error) {
	parts := strings.Split(strings.TrimSpace(content), "|")
	if len(parts) != 3 {
		return lockfile{}, errors.New("lockfile is malformed")
	}

	var l lockfile
	var err error
	if strings.TrimSpace(parts[0]) == "" {
		return lockfile{}, errors.New("port in lockfile is empty")
	}
	if l.port, err = strconv.Atoi(parts[0]); err != nil {
		return lockfile{}, errors.New("invalid port number in lockfile")
	}
	if l.port < 1 || l.port > 65535 {
		return lockfile{}, fmt.Errorf("port number %d is outside valid range (1-65535)", l.port)
	}
	if l.pid, err = strconv.Atoi(parts[1]); err != nil {
		return lockfile{}, errors.New("invalid process ID in lockfile")
	}
	l.secret = parts[2]
	if strings.TrimSpace(l.secret) == "" {
		return lockfile{}, errors.New("secret in lockfile is empty")
	}
	return l, nil
}

// verify checks the pid names a live tray process.
func (l lockfile) verify() error {
	process, err := findProcessFunc(l.pid)
	if err != nil || process == nil {
		return errors.New(trayExecutable + " process not running")
	}
	if !strings.HasPrefix(process.Executable(), trayExecutable) {
		return fmt.Errorf("process with PID %d is not %s (is %s)", l.pid, trayExecutable, process.Executable())
	}
	return nil
}

func (n *Notifier) send(l lockfile, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://127.0.0.1:%d", l.port), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Zentask-Secret", l.secret)

	res, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, strings.TrimSpace(string(msg)))
}

// Console writes notifications as lines to W.
type Console struct {
	W  io.Writer
	mu sync.Mutex
}

func NewConsole(w io.Writer) *Console {
	return &Console{W: w}
}

func (c *Console) Notify(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintln(c.W, text)
	return err
}

// Chain tries each sink in order until one succeeds.
type Chain []Sink

func (c Chain) Notify(text string) error {
	var errs []error
	for _, s := range c {
		err := s.Notify(text)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Recorder keeps every message in memory.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *Recorder) Notify(text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	return nil
}

// Messages returns a copy of the recorded messages.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}
