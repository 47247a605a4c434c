package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mergington/signupboard/internal/utils"
	"github.com/mergington/signupboard/pkg/app"
	"github.com/mergington/signupboard/pkg/board"
	"github.com/mergington/signupboard/pkg/render"
	"github.com/mergington/signupboard/pkg/session"
	"github.com/spf13/viper"
)

// newBoardClient builds the API client from the merged config.
func newBoardClient() (*board.Client, error) {
	return board.NewClient(board.Config{
		BaseURL: viper.GetString("api.url"),
		Timeout: viper.GetDuration("api.timeout"),
		Retries: viper.GetInt("api.retries"),
		Proxy:   viper.GetString("api.proxy"),
	})
}

// openSession opens the durable session slot.
func openSession() (*session.Store, error) {
	path, err := session.AbsPath(viper.GetString("session.path"))
	if err != nil {
		return nil, fmt.Errorf("could not resolve session path: %w", err)
	}
	return session.Open(path)
}

// bannerPrinter serializes banner output; Bootstrap notifies concurrently.
type bannerPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *bannerPrinter) Notify(b app.Banner) {
	p.mu.Lock()
	defer p.mu.Unlock()
	render.PrintBanner(p.w, b)
}

// promptConfirmer asks on out and reads a y/N answer from in. With yes set
// every prompt is approved without reading.
type promptConfirmer struct {
	in  *bufio.Reader
	out io.Writer
	yes bool
}

func (c *promptConfirmer) Confirm(ctx context.Context, prompt string) (bool, error) {
	if c.yes {
		return true, nil
	}
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// boardEnv is everything a command needs to drive an app.Board.
type boardEnv struct {
	board *app.Board
	store *session.Store
}

func (e *boardEnv) Close() {
	if err := e.store.Close(); err != nil {
		utils.Log.Warnf("Could not close session store: %v", err)
	}
}

// newBoardEnv wires client, session store, banners and confirmation into a
// Board. The stored session is re-validated before returning.
func newBoardEnv(ctx context.Context, in *bufio.Reader, yes bool) (*boardEnv, error) {
	client, err := newBoardClient()
	if err != nil {
		return nil, err
	}
	store, err := openSession()
	if err != nil {
		return nil, err
	}

	b := app.NewBoard(app.Config{
		API:       client,
		Store:     store,
		Confirmer: &promptConfirmer{in: in, out: os.Stderr, yes: yes},
		Notifier:  &bannerPrinter{w: os.Stderr},
		Log:       utils.Log,
	})

	if err := b.RestoreSession(ctx); err != nil {
		utils.Log.Warnf("Using stored session without validation: %v", err)
	}
	return &boardEnv{board: b, store: store}, nil
}
