package workers

import (
	"context"
	"encoding/json"
	"log"

	"skysched-api/pkg/shared"

	"github.com/nats-io/nats.go"
)

type AlertWorker struct {
	*BaseWorker
}

func NewAlertWorker(nc *nats.Conn, js nats.JetStreamContext) *AlertWorker {
	return &AlertWorker{
		BaseWorker: NewBaseWorker(
			"AlertWorker",
			nc,
			js,
			shared.StreamAlerts,
			shared.ConsumerAlertProcessor,
			shared.SubjectAlertsAll,
		),
	}
}

func (w *AlertWorker) Start(ctx context.Context) error {
	return w.processMessages(ctx, func(msg *nats.Msg) {
		log.Printf("[%s] ALERT on subject: %s", w.Name(), msg.Subject)

		var data map[string]interface{}
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			log.Printf("[%s] Raw alert data: %s", w.Name(), string(msg.Data))
		} else {
			prettyJSON, _ := json.MarshalIndent(data, "", "  ")
			log.Printf("[%s] Alert data:\n%s", w.Name(), string(prettyJSON))
		}
	})
}
