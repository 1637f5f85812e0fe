package bot

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTransport struct{}

func (failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, errors.New("discord unreachable")
}

func TestStartStopsRetryingAfterShutdown(t *testing.T) {
	session, err := discordgo.New("Bot test-token")
	require.NoError(t, err)
	session.Client = &http.Client{Transport: failingTransport{}}
	session.MaxRestRetries = 0

	b := &Bot{session: session, shutdownCh: make(chan struct{})}
	close(b.shutdownCh)

	done := make(chan error, 1)
	go func() { done <- b.Start(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start kept retrying after shutdown")
	}
}
