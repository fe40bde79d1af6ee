package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-energy/internal/stream"
	"campus-energy/internal/viewer"
)

type config struct {
	endpoint string
	token    string
	retry    time.Duration
	every    time.Duration
}

func main() {
	cfg := parseConfig()
	logger := log.New(os.Stderr, "", log.LstdFlags)

	endpoint := cfg.endpoint
	if cfg.token != "" {
		joined, err := appendToken(endpoint, cfg.token)
		if err != nil {
			log.Fatalf("invalid url: %v", err)
		}
		endpoint = joined
	}

	agent, err := viewer.NewAgent(endpoint, viewer.NewWebsocketDialer(), logger,
		viewer.WithRetryDelay(cfg.retry),
		viewer.WithStateListener(func(state viewer.State) {
			logger.Printf("connection %s", state)
		}),
		viewer.WithAlertListener(func(alert stream.AlertPayload) {
			fmt.Printf("ALERT [%s] %s (%s)\n", alert.Severity, alert.Message, alert.ID)
		}),
	)
	if err != nil {
		log.Fatalf("agent error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(cfg.every)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				printReadouts(agent)
			}
		}
	}()

	agent.Run(ctx)
}

func parseConfig() config {
	cfg := config{}
	flag.StringVar(&cfg.endpoint, "url", "ws://localhost:8080/ws", "websocket endpoint")
	flag.StringVar(&cfg.token, "token", "", "bearer token appended as a query parameter")
	flag.DurationVar(&cfg.retry, "retry", viewer.DefaultRetryDelay, "delay between reconnect attempts")
	flag.DurationVar(&cfg.every, "every", 5*time.Second, "print interval")
	flag.Parse()
	return cfg
}

func appendToken(endpoint, token string) (string, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	query.Set("token", token)
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

func printReadouts(agent *viewer.Agent) {
	readouts := agent.Readouts()
	if readouts.UpdatedAt.IsZero() {
		fmt.Println("waiting for data...")
		return
	}
	fmt.Printf("%s  solar %.0fW %.1fV %.1fA %.1fC  battery %.0f%% %.1fV charging=%v  load %.0fW\n",
		readouts.UpdatedAt.Format(time.RFC3339),
		readouts.SolarPowerW, readouts.SolarVoltage, readouts.SolarCurrent, readouts.PanelTemperature,
		readouts.BatteryLevel, readouts.BatteryVoltage, readouts.Charging,
		readouts.ConsumptionW)

	generated, used, battery := agent.Charts()
	fmt.Printf("  gen %s\n  use %s\n  bat %s\n", spark(generated), spark(used), spark(battery))
}

// spark renders a chart window as a crude inline sparkline.
func spark(points []viewer.Point) string {
	if len(points) == 0 {
		return "(empty)"
	}
	levels := []rune("▁▂▃▄▅▆▇█")
	min, max := points[0].Value, points[0].Value
	for _, p := range points[1:] {
		if p.Value < min {
			min = p.Value
		}
		if p.Value > max {
			max = p.Value
		}
	}
	span := max - min
	out := make([]rune, 0, len(points))
	for _, p := range points {
		idx := 0
		if span > 0 {
			idx = int((p.Value - min) / span * float64(len(levels)-1))
		}
		out = append(out, levels[idx])
	}
	return fmt.Sprintf("%s  (%.2f..%.2f)", string(out), min, max)
}
