// Package logger envuelve zap: un logger de proceso (Init/L) y un logger por
// request que viaja en el context (ToContext/From) con request_id, método e IP.
//
// En "prod" escribe JSON; en cualquier otro entorno, consola con colores.
// Los campos con nombre sensible (password, secret, token, code, csrf_token) se
// reemplazan por "[redacted]" antes de llegar al encoder.
//
//	log := logger.From(ctx).With(logger.Layer("service"), logger.Op("auth.login"))
//	log.Info("password ok, 2fa required", logger.UserID(u.ID))
package logger
