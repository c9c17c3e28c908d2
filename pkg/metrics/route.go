package metrics

import "context"

// UnmatchedRoute rotula requisições que não chegaram a nenhuma rota registrada
const UnmatchedRoute = "unmatched"

type routeKey struct{}

type routeLabel struct {
	template string
}

// WithRouteLabel prepara o contexto para receber o template da rota casada
func WithRouteLabel(ctx context.Context) context.Context {
	return context.WithValue(ctx, routeKey{}, &routeLabel{})
}

// SetRoute grava o template da rota (ex: /v1/cron/run/:type), nunca o caminho bruto
func SetRoute(ctx context.Context, template string) {
	if label, ok := ctx.Value(routeKey{}).(*routeLabel); ok {
		label.template = template
	}
}

// RouteFromContext devolve o template gravado pelo router ou UnmatchedRoute
func RouteFromContext(ctx context.Context) string {
	if label, ok := ctx.Value(routeKey{}).(*routeLabel); ok && label.template != "" {
		return label.template
	}
	return UnmatchedRoute
}
