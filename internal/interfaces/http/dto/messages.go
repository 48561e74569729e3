package dto

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// SupportedLanguages are the languages error messages are translated to.
// The first entry is the fallback.
var SupportedLanguages = []language.Tag{language.English, language.Turkish}

var languageMatcher = language.NewMatcher(SupportedLanguages)

var messageCatalog = buildCatalog()

var translations = map[string][2]string{
	ErrCodeUnknown:             {"An unexpected error occurred", "Beklenmeyen bir hata oluştu"},
	ErrCodeInternal:            {"An unexpected error occurred", "Beklenmeyen bir hata oluştu"},
	ErrCodeServiceUnavailable:  {"Service temporarily unavailable", "Hizmet geçici olarak kullanılamıyor"},
	ErrCodeValidation:          {"Request validation failed", "İstek doğrulaması başarısız"},
	ErrCodeBadRequest:          {"Malformed request", "Hatalı istek"},
	ErrCodeInvalidInput:        {"Invalid input provided", "Geçersiz giriş"},
	ErrCodeInvalidJSON:         {"Request body is not valid JSON", "İstek gövdesi geçerli bir JSON değil"},
	ErrCodeTooLarge:            {"Request body exceeds maximum allowed size", "İstek gövdesi izin verilen boyutu aşıyor"},
	ErrCodeUnauthorized:        {"Authentication required", "Kimlik doğrulama gerekli"},
	ErrCodeForbidden:           {"Access to this resource is forbidden", "Bu kaynağa erişim yasak"},
	ErrCodeTokenExpired:        {"Token has expired", "Oturum süresi doldu"},
	ErrCodeTokenInvalid:        {"Invalid token", "Geçersiz oturum anahtarı"},
	ErrCodeNotFound:            {"Resource not found", "Kayıt bulunamadı"},
	ErrCodeAlreadyExists:       {"Resource already exists", "Kayıt zaten mevcut"},
	ErrCodeConflict:            {"Resource conflict", "Kayıt çakışması"},
	ErrCodeConcurrencyConflict: {"Resource was modified by another request, please retry", "Kayıt başka bir istek tarafından değiştirildi, lütfen tekrar deneyin"},
	ErrCodeCartInvalid:         {"Your cart has items that need attention", "Sepetinizde düzeltilmesi gereken ürünler var"},
	ErrCodeEmptyCart:           {"Your cart is empty", "Sepetiniz boş"},
	ErrCodeStockRaceLost:       {"Stock changed while your order was being placed, please retry", "Siparişiniz oluşturulurken stok değişti, lütfen tekrar deneyin"},
	ErrCodeOfferUnavailable:    {"This offer is no longer available", "Bu ürün artık satışta değil"},
	ErrCodeInvalidState:        {"Operation not allowed in the current state", "Bu işlem mevcut durumda yapılamaz"},
	ErrCodeNotCancellable:      {"Order can no longer be cancelled", "Sipariş artık iptal edilemez"},
	ErrCodeInsufficientStock:   {"Insufficient stock available", "Yeterli stok yok"},
	ErrCodeInsufficientBalance: {"Insufficient balance available", "Yetersiz bakiye"},
	ErrCodeInvariantViolation:  {"An unexpected error occurred", "Beklenmeyen bir hata oluştu"},
	ErrCodeSequenceExhausted:   {"Could not allocate an order number, please retry", "Sipariş numarası alınamadı, lütfen tekrar deneyin"},
	ErrCodeIdempotencyReplay:   {"A request with this idempotency key is still being processed", "Bu anahtarla gönderilen istek hâlâ işleniyor"},
	ErrCodeRateLimited:         {"Too many requests, please try again later", "Çok fazla istek, lütfen daha sonra tekrar deneyin"},
}

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for code, msgs := range translations {
		_ = b.SetString(language.English, code, msgs[0])
		_ = b.SetString(language.Turkish, code, msgs[1])
	}
	return b
}

// NegotiateLanguage picks the best supported language for an Accept-Language header
func NegotiateLanguage(acceptLanguage string) language.Tag {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return SupportedLanguages[0]
	}
	_, idx, conf := languageMatcher.Match(tags...)
	if conf == language.No {
		return SupportedLanguages[0]
	}
	return SupportedLanguages[idx]
}

// LocalizedMessage returns the message for code in tag, or fallback when
// the code has no translation
func LocalizedMessage(tag language.Tag, code, fallback string) string {
	if _, ok := translations[code]; !ok {
		return fallback
	}
	return message.NewPrinter(tag, message.Catalog(messageCatalog)).Sprintf(code)
}

// HasTranslation reports whether code has a catalog entry
func HasTranslation(code string) bool {
	_, ok := translations[code]
	return ok
}
