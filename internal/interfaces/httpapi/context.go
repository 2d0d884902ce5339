package httpapi

import (
	"context"

	"github.com/riskibarqy/football-insights/internal/domain/prediction"
)

type contextKey string

const actorContextKey contextKey = "settlement_actor"

func withActor(ctx context.Context, actor prediction.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

func actorFromContext(ctx context.Context) (prediction.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(prediction.Actor)
	return actor, ok
}
