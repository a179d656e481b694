package http

import (
	"bytes"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/guilhermesenci/stock-control/pkg/keycase"
	"github.com/guilhermesenci/stock-control/pkg/logger"
)

const (
	HeaderRequestID = "X-Request-ID"
	LocalRequestID  = "request_id"
)

// RequestLogger asigna un request id (o respeta el recibido) y registra cada petición.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid := c.Get(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalRequestID, rid)
		c.Set(HeaderRequestID, rid)

		err := c.Next()
		if err != nil {
			// que el status registrado sea el que recibe el cliente
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		} else if status >= fiber.StatusBadRequest {
			ev = log.Warn()
		}
		ev.Str("request_id", rid).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("http request")
		return nil
	}
}

// KeyCase expone la API en camelCase con DTOs internos en snake_case: renombra las claves
// de query y del cuerpo JSON de entrada a snake_case y las del JSON de salida a camelCase.
// Los valores no se tocan; los números conservan su representación exacta.
func KeyCase(skipPrefixes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		for _, p := range skipPrefixes {
			if strings.HasPrefix(c.Path(), p) {
				return c.Next()
			}
		}

		args := c.Request().URI().QueryArgs()
		if args.Len() > 0 {
			type pair struct{ k, v string }
			var pairs []pair
			args.VisitAll(func(k, v []byte) {
				pairs = append(pairs, pair{keycase.ToSnake(string(k)), string(v)})
			})
			args.Reset()
			for _, p := range pairs {
				args.Add(p.k, p.v)
			}
		}

		if body := c.Body(); len(body) > 0 && isJSON(string(c.Request().Header.ContentType())) {
			out, err := keycase.RewriteJSON(body, keycase.ToSnake)
			if err != nil {
				return fail(c, fiber.StatusBadRequest, "INVALID_BODY", "JSON inválido")
			}
			c.Request().SetBody(out)
		}

		if err := c.Next(); err != nil {
			return err
		}

		if isJSON(string(c.Response().Header.ContentType())) {
			body := c.Response().Body()
			if len(bytes.TrimSpace(body)) == 0 {
				return nil
			}
			out, err := keycase.RewriteJSON(body, keycase.ToCamel)
			if err != nil {
				return err
			}
			c.Response().SetBody(out)
		}
		return nil
	}
}

func isJSON(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), fiber.MIMEApplicationJSON)
}
