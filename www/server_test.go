package www

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/angas/elpriskvart-go/config"
	"github.com/angas/elpriskvart-go/days"
)

func TestRunReturnsOnListenError(t *testing.T) {
	today := days.FromTime(time.Now(), time.UTC)
	s := &Server{
		logger: testLogger,
		config: config.AppConfigApi{Address: "127.0.0.1", Port: -1},
		source: &fakeSource{snap: testSnapshot(today)},
		hub:    NewHub(testLogger),
		mux:    http.NewServeMux(),
	}

	done := make(chan struct{})
	go func() {
		s.Run(context.Background(), testEnergyPriceConfig(0))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run kept running after the listener failed")
	}
}
