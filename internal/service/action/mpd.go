package action

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/fhs/gompd/v2/mpd"

	"github.com/oshokin/bedtime/internal/logger"
)

// mpdGreeting starts the first line an MPD server sends.
const mpdGreeting = "OK MPD "

// errNoGreeting is returned when the peer does not speak MPD.
var errNoGreeting = errors.New("mpd: no greeting")

// MPDPlayer loads a stored playlist on an MPD server and starts playing it.
type MPDPlayer struct {
	// Network is "tcp" or "unix".
	Network string
	// Address is host:port or a socket path.
	Address string
	// Password authenticates the session when set.
	Password string
	// Playlist is the stored playlist to load.
	Playlist string
	// Shuffle turns random mode on before playing.
	Shuffle bool
	// Timeout bounds the whole exchange. Zero means no limit.
	Timeout time.Duration
}

// StartPlayback replaces the queue with the playlist and starts playing.
//
// gompd dials without a deadline, so the server is first greeted through a
// ctx-bound dialer. An unreachable or silent server fails there and no
// goroutine is started. After that the goroutine only waits on replies of a
// server that has just answered, and ctx bounds how long the caller waits.
func (p *MPDPlayer) StartPlayback(ctx context.Context) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	if err := p.greet(ctx); err != nil {
		return err
	}

	done := make(chan error, 1)

	go func() {
		done <- p.play(ctx)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("mpd playback: %w", ctx.Err())
	}
}

// greet connects once and waits for the MPD greeting within ctx.
func (p *MPDPlayer) greet(ctx context.Context) error {
	var d net.Dialer

	conn, err := d.DialContext(ctx, p.Network, p.Address)
	if err != nil {
		return fmt.Errorf("dial mpd %s: %w", p.Address, err)
	}

	defer func() {
		_ = conn.Close()
	}()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	line, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("read mpd greeting: %w", err)
	}

	if !strings.HasPrefix(line, mpdGreeting) {
		return fmt.Errorf("%w from %s", errNoGreeting, p.Address)
	}

	return nil
}

func (p *MPDPlayer) play(ctx context.Context) error {
	client, err := mpd.DialAuthenticated(p.Network, p.Address, p.Password)
	if client != nil {
		defer func() {
			_ = client.Close()
		}()
	}

	if err != nil {
		return fmt.Errorf("connect to mpd %s: %w", p.Address, err)
	}

	if err = client.Clear(); err != nil {
		return fmt.Errorf("mpd clear: %w", err)
	}

	if err = client.PlaylistLoad(p.Playlist, -1, -1); err != nil {
		return fmt.Errorf("mpd load %q: %w", p.Playlist, err)
	}

	if err = client.Random(p.Shuffle); err != nil {
		return fmt.Errorf("mpd random: %w", err)
	}

	if err = client.Play(-1); err != nil {
		return fmt.Errorf("mpd play: %w", err)
	}

	logger.InfoKV(ctx, "Playback started", "playlist", p.Playlist, "address", p.Address, "shuffle", p.Shuffle)

	return nil
}
