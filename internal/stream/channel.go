package stream

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shenikar/incident_moderation_console/internal/config"
	"github.com/shenikar/incident_moderation_console/internal/replica"
	"github.com/sirupsen/logrus"
)

// Channel поддерживает одно постоянное соединение с push-источником изменений.
// Разрыв соединения ведет к неограниченным повторным подключениям с
// фиксированной задержкой. Сигнал Connected чисто наблюдательный: он не
// гарантирует, что за время разрыва не были пропущены события.
type Channel struct {
	url            string
	reconnectDelay time.Duration
	engine         *replica.Engine
	logger         *logrus.Logger

	connected atomic.Bool
}

// NewChannel создает push-канал поверх движка реплики
func NewChannel(cfg *config.Config, engine *replica.Engine, logger *logrus.Logger) *Channel {
	return &Channel{
		url:            cfg.UpstreamWSURL,
		reconnectDelay: cfg.StreamReconnectDelay,
		engine:         engine,
		logger:         logger,
	}
}

// Connected возвращает текущий агрегатный сигнал live
func (c *Channel) Connected() bool {
	return c.connected.Load()
}

// Run запускает цикл подключения; возвращается при отмене контекста.
// Отказы отдельных попыток не всплывают наружу, наружу виден только
// агрегатный сигнал connected/disconnected.
func (c *Channel) Run(ctx context.Context) {
	wasConnected := false
	for {
		if ctx.Err() != nil {
			c.logger.Info("Stream channel stopped")
			return
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
		if err != nil {
			c.logger.WithError(err).Debug("Stream dial failed, retrying")
			if !sleepCtx(ctx, c.reconnectDelay) {
				return
			}
			continue
		}

		c.connected.Store(true)
		c.logger.Info("Stream connected")
		if wasConnected {
			c.engine.HandleReconnect(ctx)
		}
		wasConnected = true

		c.readLoop(ctx, conn)

		c.connected.Store(false)
		c.logger.Warn("Stream disconnected")
		if !sleepCtx(ctx, c.reconnectDelay) {
			return
		}
	}
}

func (c *Channel) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	// Закрытие соединения при отмене контекста снимает блокировку ReadMessage
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				c.logger.WithError(err).Debug("Stream read failed")
			}
			return
		}

		change, err := DecodeMessage(raw)
		if err != nil {
			c.logger.WithError(err).Warn("Rejected stream frame")
			continue
		}

		if err := c.engine.Submit(ctx, change); err != nil {
			return
		}
	}
}

// sleepCtx ждет delay или отмену контекста; false означает отмену
func sleepCtx(ctx context.Context, delay time.Duration) bool {
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
