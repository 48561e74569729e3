package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/infrastructure/logger"
	"github.com/marketplace/backend/internal/interfaces/http/dto"
	"golang.org/x/text/language"
)

// LocaleKey is the gin context key holding the negotiated language.Tag
const LocaleKey = "locale"

// ContentLanguageHeader echoes the language the response was rendered in
const ContentLanguageHeader = "Content-Language"

// Locale negotiates the response language from Accept-Language
func Locale() gin.HandlerFunc {
	return func(c *gin.Context) {
		tag := dto.NegotiateLanguage(c.GetHeader("Accept-Language"))
		c.Set(LocaleKey, tag)
		c.Header(ContentLanguageHeader, tag.String())
		c.Next()
	}
}

// GetLocale returns the negotiated language, English when Locale did not run
func GetLocale(c *gin.Context) language.Tag {
	if v, ok := c.Get(LocaleKey); ok {
		if tag, ok := v.(language.Tag); ok {
			return tag
		}
	}
	return dto.SupportedLanguages[0]
}

// ErrorCodeKey holds the ERR_* code of an error response for later middleware
const ErrorCodeKey = "error_code"

// AbortWithError writes a localized error envelope for code and aborts the chain
func AbortWithError(c *gin.Context, code string) {
	msg := dto.LocalizedMessage(GetLocale(c), code, code)
	c.Set(ErrorCodeKey, code)
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code),
		dto.NewErrorResponseWithRequestID(code, msg, logger.GetRequestID(c.Request.Context())))
}
