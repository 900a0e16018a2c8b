package stream

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shenikar/incident_moderation_console/internal/config"
	"github.com/shenikar/incident_moderation_console/internal/remote/mocks"
	"github.com/shenikar/incident_moderation_console/internal/replica"
	"github.com/shenikar/incident_moderation_console/internal/store"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var upgrader = websocket.Upgrader{}

// newStreamFixture поднимает тестовый push-источник, отдающий заданные кадры
func newStreamFixture(t *testing.T, frames ...string) (*Channel, *store.Store, context.CancelFunc) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				break
			}
		}
		// Соединение держится открытым до закрытия со стороны клиента
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(server.Close)

	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	st := store.New()
	engine := replica.New(st, source, logger, replica.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)

	channel := NewChannel(&config.Config{
		UpstreamWSURL:        "ws" + strings.TrimPrefix(server.URL, "http"),
		StreamReconnectDelay: 10 * time.Millisecond,
	}, engine, logger)
	go channel.Run(ctx)

	return channel, st, cancel
}

func TestChannel_AppliesStreamedChanges(t *testing.T) {
	channel, st, cancel := newStreamFixture(t,
		`{"event":"INCIDENT_CREATED","data":{"id":1,"category":"Theft","priority_label":"High"}}`,
	)
	defer cancel()

	require.Eventually(t, func() bool {
		_, ok := st.Incident("INC-00001")
		return ok
	}, 3*time.Second, 10*time.Millisecond)

	assert.True(t, channel.Connected())
}

func TestChannel_SkipsRejectedFrames(t *testing.T) {
	_, st, cancel := newStreamFixture(t,
		`{"event":"INCIDENT_EXPLODED","data":{"id":99}}`,
		`not json at all`,
		`{"event":"INCIDENT_CREATED","data":{"id":2,"category":"Theft","priority_label":"Low"}}`,
	)
	defer cancel()

	// Подозрительные кадры отклоняются по одному, канал продолжает читать
	require.Eventually(t, func() bool {
		_, ok := st.Incident("INC-00002")
		return ok
	}, 3*time.Second, 10*time.Millisecond)

	_, ok := st.Incident("INC-00099")
	assert.False(t, ok)
}

func TestChannel_DisconnectedUntilDialSucceeds(t *testing.T) {
	ctrl := gomock.NewController(t)
	source := mocks.NewMockSource(ctrl)

	logger := logrus.New()
	logger.SetOutput(&bytes.Buffer{})

	engine := replica.New(store.New(), source, logger, replica.Options{})
	channel := NewChannel(&config.Config{
		UpstreamWSURL:        "ws://127.0.0.1:1/stream",
		StreamReconnectDelay: 10 * time.Millisecond,
	}, engine, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go channel.Run(ctx)

	time.Sleep(50 * time.Millisecond)
	assert.False(t, channel.Connected())
}
