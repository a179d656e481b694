package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/guilhermesenci/stock-control/pkg/jwt"
)

// LocalSubject clave de c.Locals con el jwt.Subject autenticado.
const LocalSubject = "subject"

// AuthMiddleware valida el Bearer Token JWT y deja el sujeto en c.Locals.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fail(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "Authorization header requerido")
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fail(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "formato: Bearer <token>")
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return fail(c, fiber.StatusUnauthorized, "MISSING_TOKEN", "token vacío")
		}
		sub, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return fail(c, fiber.StatusUnauthorized, "INVALID_TOKEN", "token inválido o expirado")
		}
		c.Locals(LocalSubject, sub)
		return c.Next()
	}
}

// GetSubject devuelve el sujeto autenticado (después de AuthMiddleware).
func GetSubject(c *fiber.Ctx) (jwt.Subject, bool) {
	sub, ok := c.Locals(LocalSubject).(jwt.Subject)
	return sub, ok
}

// RequirePermission responde 403 si el sujeto no tiene el permiso. Los superusuarios pasan siempre.
// Debe usarse DESPUÉS de AuthMiddleware.
func RequirePermission(perm string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sub, ok := GetSubject(c)
		if !ok {
			return fail(c, fiber.StatusUnauthorized, "UNAUTHORIZED", "sujeto no encontrado en el contexto")
		}
		if !sub.HasPermission(perm) {
			return fail(c, fiber.StatusForbidden, "FORBIDDEN", "permiso requerido: "+perm)
		}
		return c.Next()
	}
}
