package acquisition

import "github.com/botwa2000/bonifatus-dms-sub000/internal/core/domain"

// Classify decides scanned vs native from structural page signals.
// Rules are evaluated in order and the first match wins.
func Classify(s domain.PageSignals) domain.PageClass {
	switch {
	case s.FontCount > 0 && s.TextBlockCount > 3:
		return domain.PageClass{IsScanned: false, Confidence: 1.0}
	case s.TextChars >= 200:
		return domain.PageClass{IsScanned: false, Confidence: 0.9}
	case s.FontCount == 0 && s.TextBlockCount == 0 && s.ImageCount >= 1:
		return domain.PageClass{IsScanned: true, Confidence: 1.0}
	case s.TextChars < 50:
		return domain.PageClass{IsScanned: true, Confidence: 0.8}
	case s.TextChars >= 100 && s.FontCount == 0:
		return domain.PageClass{IsScanned: false, Confidence: 0.7}
	default:
		return domain.PageClass{IsScanned: true, Confidence: 0.6}
	}
}
