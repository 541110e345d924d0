package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	tomlconfig "github.com/bnema/orderlink/internal/adapters/config/toml"
	"github.com/bnema/orderlink/internal/adapters/debughttp"
	statusadapter "github.com/bnema/orderlink/internal/adapters/render/status"
	"github.com/bnema/orderlink/internal/adapters/transport/loopback"
	"github.com/bnema/orderlink/internal/domain"
	"github.com/bnema/orderlink/internal/framing"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type simulationResult struct {
	Scenario  string                `json:"scenario"`
	Snapshot  debughttp.SnapshotDoc `json:"snapshot"`
	Frames    []simulationFrame     `json:"frames"`
	Responses []simulationResponse  `json:"responses"`
	Errors    []string              `json:"errors,omitempty"`
}

type simulationFrame struct {
	Kind         loopback.FrameKind `json:"kind"`
	ConnectionID string             `json:"connection_id"`
	RequestID    int                `json:"request_id,omitempty"`
	Text         string             `json:"text,omitempty"`
}

// simulationResponse is a response message as the peer would reassemble it
// from the notifications.
type simulationResponse struct {
	ConnectionID string `json:"connection_id"`
	Text         string `json:"text"`
}

func newSimulateCmd(app *app) *cobra.Command {
	var (
		asJSON bool
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "simulate <scenario.toml>",
		Short: "Replay a scripted peer session against an in-memory transport",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := app.loadProfile()
			if err != nil {
				return err
			}

			scenario, err := tomlconfig.LoadScenario(args[0])
			if err != nil {
				return err
			}

			logger, err := app.newLogger(profile, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			transport := loopback.New()
			transport.SetCCCD(profile.Peripheral.CCCD)

			stack, err := wirePeripheral(profile, transport, nil, logger)
			if err != nil {
				return err
			}
			defer stack.registry.Close()
			transport.Attach(stack.peripheral)

			var replayErrs []error
			for i, event := range scenario.Events {
				if err := replayEvent(cmd.Context(), transport, profile, event); err != nil {
					logger.Warn().Err(err).Int("event", i+1).Str("kind", string(event.Kind)).Msg("scenario event failed")
					replayErrs = append(replayErrs, fmt.Errorf("event %d (%s): %w", i+1, event.Kind, err))
				}
			}

			codec, err := profile.Codec()
			if err != nil {
				return fmt.Errorf("wire frame codec: %w", err)
			}

			result := simulationResult{
				Scenario:  scenario.Name,
				Snapshot:  debughttp.NewSnapshotDoc(stack.registry.Snapshot()),
				Frames:    simulationFrames(transport.Frames()),
				Responses: decodeResponses(codec, transport.Frames()),
			}
			for _, err := range replayErrs {
				result.Errors = append(result.Errors, err.Error())
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(result); err != nil {
					return err
				}
			} else if err := writeSimulationText(cmd.OutOrStdout(), app, profile, result); err != nil {
				return err
			}

			if strict && len(replayErrs) > 0 {
				return fmt.Errorf("simulate %s: %w", args[0], errors.Join(replayErrs...))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail when any scenario event returns an error")

	return cmd
}

func replayEvent(ctx context.Context, transport *loopback.Transport, profile tomlconfig.Profile, event tomlconfig.ScenarioEvent) error {
	id := domain.ConnectionID(event.ID)

	switch event.Kind {
	case tomlconfig.ScenarioConnecting:
		return transport.Connecting(ctx, id)
	case tomlconfig.ScenarioConnect:
		return transport.Connect(ctx, id, event.Name)
	case tomlconfig.ScenarioDisconnect:
		return transport.Drop(ctx, id)
	case tomlconfig.ScenarioMTU:
		transport.NegotiateMTU(id, event.MTU)
		return nil
	case tomlconfig.ScenarioSubscribe:
		return transport.Subscribe(ctx, id, event.Enabled)
	case tomlconfig.ScenarioWrite:
		characteristic := event.Characteristic
		if characteristic == uuid.Nil {
			characteristic = profile.Peripheral.Characteristic
		}
		return transport.Write(ctx, id, characteristic, event.Data, event.ResponseRequired)
	default:
		return fmt.Errorf("unknown scenario event kind %q", event.Kind)
	}
}

func simulationFrames(frames []loopback.Frame) []simulationFrame {
	out := make([]simulationFrame, 0, len(frames))
	for _, frame := range frames {
		out = append(out, simulationFrame{
			Kind:         frame.Kind,
			ConnectionID: string(frame.ConnectionID),
			RequestID:    frame.RequestID,
			Text:         string(frame.Payload),
		})
	}
	return out
}

func decodeResponses(codec framing.Codec, frames []loopback.Frame) []simulationResponse {
	accumulators := make(map[domain.ConnectionID]*framing.Accumulator)
	responses := []simulationResponse{}

	for _, frame := range frames {
		switch frame.Kind {
		case loopback.FrameDrop:
			delete(accumulators, frame.ConnectionID)
		case loopback.FrameNotify:
			acc, ok := accumulators[frame.ConnectionID]
			if !ok {
				acc = &framing.Accumulator{}
				accumulators[frame.ConnectionID] = acc
			}
			message, complete, err := codec.Decode(acc, frame.Payload)
			if err != nil || !complete {
				continue
			}
			responses = append(responses, simulationResponse{
				ConnectionID: string(frame.ConnectionID),
				Text:         string(message),
			})
		}
	}

	return responses
}

func writeSimulationText(w io.Writer, app *app, profile tomlconfig.Profile, result simulationResult) error {
	rendered, err := app.statusRenderer(result.Snapshot.Snapshot(), statusadapter.RenderOptions{
		Now:         app.now(),
		BufferLimit: profile.Framing.MaxMessageBytes,
	})
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	var b strings.Builder
	b.WriteString(rendered)
	b.WriteString("\n\nframes:\n")
	if len(result.Frames) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, frame := range result.Frames {
		switch frame.Kind {
		case loopback.FrameAck:
			fmt.Fprintf(&b, "  ack    %s #%d %q\n", frame.ConnectionID, frame.RequestID, frame.Text)
		case loopback.FrameDrop:
			fmt.Fprintf(&b, "  drop   %s\n", frame.ConnectionID)
		default:
			fmt.Fprintf(&b, "  notify %s %q\n", frame.ConnectionID, frame.Text)
		}
	}

	if len(result.Responses) > 0 {
		b.WriteString("\nresponses:\n")
		for _, response := range result.Responses {
			fmt.Fprintf(&b, "  %s %s\n", response.ConnectionID, response.Text)
		}
	}

	if len(result.Errors) > 0 {
		b.WriteString("\nerrors:\n")
		for _, msg := range result.Errors {
			fmt.Fprintf(&b, "  %s\n", msg)
		}
	}

	_, err = io.WriteString(w, b.String())
	return err
}
