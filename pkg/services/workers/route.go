package workers

import (
	"context"
	"encoding/json"
	"log"

	"skysched-api/pkg/shared"

	"github.com/nats-io/nats.go"
)

type RouteWorker struct {
	*BaseWorker
}

func NewRouteWorker(nc *nats.Conn, js nats.JetStreamContext) *RouteWorker {
	return &RouteWorker{
		BaseWorker: NewBaseWorker(
			"RouteWorker",
			nc,
			js,
			shared.StreamRoutes,
			shared.ConsumerRouteProcessor,
			shared.SubjectRoutesAll,
		),
	}
}

func (w *RouteWorker) Start(ctx context.Context) error {
	return w.processMessages(ctx, func(msg *nats.Msg) {
		log.Printf("[%s] Received route message on subject: %s", w.Name(), msg.Subject)

		var data map[string]interface{}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Printf("[%s] Raw message data: %s", w.Name(), string(msg.Data))
		} else {
			prettyJSON, _ := json.MarshalIndent(data, "", "  ")
			log.Printf("[%s] Route data:\n%s", w.Name(), string(prettyJSON))
		}
	})
}
