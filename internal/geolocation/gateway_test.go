package geolocation_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/harborops/attendance-management/internal/geolocation"
)

func TestGeolocation(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Geolocation Suite")
}

var _ = Describe("StaticProvider", func() {
	It("should return the wrapped fix", func() {
		fix := &geolocation.Position{AccuracyMeters: 12}
		fix.Latitude = 4.0483
		fix.Longitude = 9.7043

		pos, err := geolocation.NewStaticProvider(fix).CurrentPosition(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(pos.Latitude).To(Equal(4.0483))
		Expect(pos.AccuracyMeters).To(Equal(12.0))
	})

	It("should report unavailable when no fix was supplied", func() {
		_, err := geolocation.NewStaticProvider(nil).CurrentPosition(context.Background())
		Expect(err).To(MatchError(geolocation.ErrPositionUnavailable))
	})

	It("should report unavailable for out-of-range coordinates", func() {
		fix := &geolocation.Position{}
		fix.Latitude = 120
		_, err := geolocation.NewStaticProvider(fix).CurrentPosition(context.Background())
		Expect(err).To(MatchError(geolocation.ErrPositionUnavailable))
	})

	It("should report timeout when the context is already done", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		fix := &geolocation.Position{}
		_, err := geolocation.NewStaticProvider(fix).CurrentPosition(ctx)
		Expect(err).To(MatchError(geolocation.ErrPositionTimeout))
	})
})

var _ = Describe("DeviceGateway", func() {
	var logger *slog.Logger

	BeforeEach(func() {
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	})

	It("should return the fix reported by the gateway", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"latitude":4.0483,"longitude":9.7043,"accuracy_meters":8,"available":true}`))
		}))
		defer server.Close()

		gateway := geolocation.NewDeviceGateway(geolocation.GatewayConfig{BaseURL: server.URL}, logger)

		pos, err := gateway.CurrentPosition(context.Background())
		Expect(err).ToNot(HaveOccurred())
		Expect(pos.Latitude).To(BeNumerically("~", 4.0483, 1e-9))
		Expect(pos.AccuracyMeters).To(Equal(8.0))
	})

	It("should report unavailable when the device has no fix", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"available":false}`))
		}))
		defer server.Close()

		gateway := geolocation.NewDeviceGateway(geolocation.GatewayConfig{BaseURL: server.URL}, logger)

		_, err := gateway.CurrentPosition(context.Background())
		Expect(err).To(MatchError(geolocation.ErrPositionUnavailable))
	})

	It("should report unavailable when no gateway is configured", func() {
		gateway := geolocation.NewDeviceGateway(geolocation.GatewayConfig{}, logger)

		_, err := gateway.CurrentPosition(context.Background())
		Expect(err).To(MatchError(geolocation.ErrPositionUnavailable))
	})

	It("should report timeout when the gateway is too slow", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		gateway := geolocation.NewDeviceGateway(geolocation.GatewayConfig{
			BaseURL:    server.URL,
			FixTimeout: 50 * time.Millisecond,
		}, logger)

		_, err := gateway.CurrentPosition(context.Background())
		Expect(err).To(MatchError(geolocation.ErrPositionTimeout))
	})

	It("should reject stale fixes", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			old := time.Now().Add(-10 * time.Minute).Format(time.RFC3339)
			w.Write([]byte(`{"latitude":4.0,"longitude":9.7,"available":true,"fixed_at":"` + old + `"}`))
		}))
		defer server.Close()

		gateway := geolocation.NewDeviceGateway(geolocation.GatewayConfig{
			BaseURL:        server.URL,
			MaxPositionAge: time.Minute,
		}, logger)

		_, err := gateway.CurrentPosition(context.Background())
		Expect(err).To(MatchError(geolocation.ErrPositionUnavailable))
	})
})
