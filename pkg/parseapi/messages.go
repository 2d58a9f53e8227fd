package parseapi

import "golang.org/x/text/language"

type messageTable struct {
	codes    map[int]string
	unknown  string // format with the status code
	fallback string
}

var messages = map[language.Tag]messageTable{
	language.English: {
		codes: map[int]string{
			400: "Invalid request sent to the document parsing API.",
			401: "Authentication failed: the API key is invalid or missing.",
			403: "Access denied: the API key does not have permission for this operation.",
			404: "The document parsing API endpoint was not found.",
			429: "Rate limit exceeded: too many requests, please try again later.",
			500: "The document parsing API encountered an internal error.",
			502: "Bad gateway: the document parsing API is unreachable.",
			503: "The document parsing API is temporarily unavailable.",
			504: "The document parsing API timed out.",
		},
		unknown:  "API error (code %d).",
		fallback: "Document parsing failed. Please try again later.",
	},
	language.Vietnamese: {
		codes: map[int]string{
			400: "Yêu cầu gửi đến API phân tích tài liệu không hợp lệ.",
			401: "Xác thực thất bại: API key không hợp lệ hoặc bị thiếu.",
			403: "Truy cập bị từ chối: API key không có quyền thực hiện thao tác này.",
			404: "Không tìm thấy endpoint của API phân tích tài liệu.",
			429: "Vượt quá giới hạn yêu cầu, vui lòng thử lại sau.",
			500: "API phân tích tài liệu gặp lỗi nội bộ.",
			502: "Lỗi cổng kết nối: không thể kết nối đến API phân tích tài liệu.",
			503: "API phân tích tài liệu tạm thời không khả dụng.",
			504: "API phân tích tài liệu hết thời gian chờ.",
		},
		unknown:  "Lỗi API (mã %d).",
		fallback: "Phân tích tài liệu thất bại. Vui lòng thử lại sau.",
	},
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Vietnamese})

// MatchLanguage resolves a locale string such as "vi-VN" to a supported
// message language, falling back to English.
func MatchLanguage(locale string) language.Tag {
	if locale == "" {
		return language.English
	}
	tags, _, err := language.ParseAcceptLanguage(locale)
	if err != nil || len(tags) == 0 {
		return language.English
	}
	_, idx, _ := matcher.Match(tags...)
	return []language.Tag{language.English, language.Vietnamese}[idx]
}

func tableFor(lang language.Tag) messageTable {
	if t, ok := messages[lang]; ok {
		return t
	}
	return messages[MatchLanguage(lang.String())]
}
