package middleware

import (
	"github.com/gendata/gendata-api/internal/dto"
	"github.com/gendata/gendata-api/internal/services"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const subjectKey = "token_subject"

// JWTProtected extracts the bearer token and accepts it only if tokens.Verify
// does, so every protected route applies the issuer's signature, algorithm and
// expiry rules. The verified subject is stored for AdminRequired.
func JWTProtected(secret string, tokens *services.TokenIssuer) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{
			JWTAlg: tokens.Algorithm(),
			Key:    []byte(secret),
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			token, ok := c.Locals("user").(*jwt.Token)
			if !ok || token == nil {
				return unauthorized(c)
			}
			subject, err := tokens.Verify(token.Raw)
			if err != nil {
				return unauthorized(c)
			}
			c.Locals(subjectKey, subject)
			return c.Next()
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return unauthorized(c)
		},
	})
}

func unauthorized(c *fiber.Ctx) error {
	c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
		Error: true, Message: "Could not validate credentials",
	})
}
