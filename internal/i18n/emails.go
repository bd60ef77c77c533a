package i18n

import (
	"html"
	"strings"
)

type EmailContent struct {
	Subject string
	Text    string
	HTML    string
}

type emailStrings struct {
	InquirySubject string
	InquiryText    string
	InquiryHTML    string

	ReceiptSubject string
	ReceiptText    string
	ReceiptHTML    string

	NotProvided string
}

const fallbackEmailLocale = "en"

var emailTranslations = map[string]emailStrings{
	"en": {
		InquirySubject: "New inquiry from {name}",
		InquiryText: "A new inquiry was submitted on the {locale} site.\n\n" +
			"Name: {name}\nEmail: {email}\nPhone: {phone}\nCompany: {company}\n\n{message}\n\nReference: {id}",
		InquiryHTML: "<p>A new inquiry was submitted on the <strong>{locale}</strong> site.</p>" +
			"<ul><li><strong>Name:</strong> {name}</li>" +
			"<li><strong>Email:</strong> {email}</li>" +
			"<li><strong>Phone:</strong> {phone}</li>" +
			"<li><strong>Company:</strong> {company}</li></ul>" +
			"<p>{message}</p>" +
			"<p>Reference: {id}</p>",

		ReceiptSubject: "We received your message",
		ReceiptText:    "Hi {name},\n\nThank you for contacting us. We will get back to you soon.\n\nReference: {id}",
		ReceiptHTML: "<p>Hi {name},</p>" +
			"<p>Thank you for contacting us. We will get back to you soon.</p>" +
			"<p>Reference: {id}</p>",

		NotProvided: "not provided",
	},
	"zh": {
		InquirySubject: "来自 {name} 的新询盘",
		InquiryText: "{locale} 站点收到一条新的询盘。\n\n" +
			"姓名：{name}\n邮箱：{email}\n电话：{phone}\n公司：{company}\n\n{message}\n\n编号：{id}",
		InquiryHTML: "<p><strong>{locale}</strong> 站点收到一条新的询盘。</p>" +
			"<ul><li><strong>姓名：</strong>{name}</li>" +
			"<li><strong>邮箱：</strong>{email}</li>" +
			"<li><strong>电话：</strong>{phone}</li>" +
			"<li><strong>公司：</strong>{company}</li></ul>" +
			"<p>{message}</p>" +
			"<p>编号：{id}</p>",

		ReceiptSubject: "我们已收到您的留言",
		ReceiptText:    "{name}，您好：\n\n感谢您的联系，我们会尽快回复。\n\n编号：{id}",
		ReceiptHTML: "<p>{name}，您好：</p>" +
			"<p>感谢您的联系，我们会尽快回复。</p>" +
			"<p>编号：{id}</p>",

		NotProvided: "未填写",
	},
}

func emailStringsForLocale(locale string) emailStrings {
	key := strings.ToLower(strings.TrimSpace(locale))
	if val, ok := emailTranslations[key]; ok {
		return val
	}
	return emailTranslations[fallbackEmailLocale]
}

func renderTemplate(tmpl string, values map[string]string) string {
	if tmpl == "" || len(values) == 0 {
		return tmpl
	}

	replacements := make([]string, 0, len(values)*2)
	for key, value := range values {
		replacements = append(replacements, "{"+key+"}", value)
	}
	return strings.NewReplacer(replacements...).Replace(tmpl)
}

func escapeValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = html.EscapeString(v)
	}
	return out
}

// Inquiry describes a contact submission for notification templates.
type Inquiry struct {
	ID      string
	Locale  string
	Name    string
	Email   string
	Phone   string
	Company string
	Message string
}

// InquiryEmail renders the owner notification in the given language.
func InquiryEmail(lang string, in Inquiry) EmailContent {
	templates := emailStringsForLocale(lang)
	orDefault := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return templates.NotProvided
		}
		return v
	}
	values := map[string]string{
		"id":      in.ID,
		"locale":  in.Locale,
		"name":    in.Name,
		"email":   in.Email,
		"phone":   orDefault(in.Phone),
		"company": orDefault(in.Company),
		"message": in.Message,
	}
	return EmailContent{
		Subject: renderTemplate(templates.InquirySubject, values),
		Text:    renderTemplate(templates.InquiryText, values),
		HTML:    renderTemplate(templates.InquiryHTML, escapeValues(values)),
	}
}

func ReceiptEmail(lang, name, id string) EmailContent {
	templates := emailStringsForLocale(lang)
	values := map[string]string{
		"name": name,
		"id":   id,
	}
	return EmailContent{
		Subject: templates.ReceiptSubject,
		Text:    renderTemplate(templates.ReceiptText, values),
		HTML:    renderTemplate(templates.ReceiptHTML, escapeValues(values)),
	}
}
