package workers

import (
	"context"
	"encoding/json"
	"log"

	"skysched-api/pkg/shared"

	"github.com/nats-io/nats.go"
)

// FlightWorker tails the flight stream and logs schedule changes as they
// happen. Downstream consumers (crew rostering, ops boards) hang off the
// same stream with their own durables.
type FlightWorker struct {
	*BaseWorker
}

func NewFlightWorker(nc *nats.Conn, js nats.JetStreamContext) *FlightWorker {
	return &FlightWorker{
		BaseWorker: NewBaseWorker(
			"FlightWorker",
			nc,
			js,
			shared.StreamFlights,
			shared.ConsumerFlightProcessor,
			shared.SubjectFlightsAll,
		),
	}
}

func (w *FlightWorker) Start(ctx context.Context) error {
	return w.processMessages(ctx, func(msg *nats.Msg) {
		log.Printf("[%s] Received flight message on subject: %s", w.Name(), msg.Subject)

		var data map[string]interface{}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Printf("[%s] Raw message data: %s", w.Name(), string(msg.Data))
		} else {
			prettyJSON, _ := json.MarshalIndent(data, "", "  ")
			log.Printf("[%s] Flight data:\n%s", w.Name(), string(prettyJSON))
		}
	})
}
