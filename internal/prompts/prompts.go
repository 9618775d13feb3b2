package prompts

import (
	"github.com/tmc/langchaingo/prompts"

	"github.com/tribalconversions/tribal-backend/internal/models"
)

// Scoring asks the model to judge how serious and qualified a lead is.
// Only the number matters; the caller extracts digits from the response.
const Scoring = `You are an AI assistant helping qualify real estate leads.

Here is the lead's information:
- Name: {{.name}}
- Email: {{.email}}
- Phone: {{.phone}}
- Budget: {{.budget}}
- Timeline: {{.timeline}}
- Interest: {{.interest}}
- Property Type: {{.property_type}}
- Down Payment: {{.down_payment}}
- Credit Score: {{.credit_score}}
- Has Agent: {{.has_agent}}
- Notes: {{.notes}}
- ZIP: {{.zip}}
- Living In Property: {{.living_in_property}}
- Ownership: {{.ownership}}
- Condition: {{.condition}}
- Motivation: {{.motivation}}

Give a motivation score between 0 and 100 based on how serious and qualified this lead seems. Only return the number.`

// Followup asks the model for a personalized first-touch message.
const Followup = `You're a real estate assistant AI. Create a personalized follow-up message to a lead based on their info.

Lead info:
- Name: {{.name}}
- Email: {{.email}}
- Phone: {{.phone}}
- Budget: {{.budget}}
- Timeline: {{.timeline}}
- Interest: {{.interest}}
- Property Type: {{.property_type}}
- Down Payment: {{.down_payment}}
- Credit Score: {{.credit_score}}
- Has Agent: {{.has_agent}}
- Notes: {{.notes}}
- ZIP: {{.zip}}
- Living In Property: {{.living_in_property}}
- Ownership: {{.ownership}}
- Condition: {{.condition}}
- Motivation: {{.motivation}}

Tone: Friendly, professional, and helpful. Mention the timeline, suggest scheduling a call, and thank them for reaching out.
Sign off as "{{.sign_off}}".
Make it sound natural — like a text or email.`

func leadVars(attrs models.LeadAttributes) map[string]any {
	notes := attrs.Notes
	if notes == "" {
		notes = "N/A"
	}
	return map[string]any{
		"name":               attrs.Name,
		"email":              attrs.Email,
		"phone":              attrs.Phone,
		"budget":             attrs.Budget,
		"timeline":           attrs.Timeline,
		"interest":           attrs.Interest,
		"property_type":      attrs.PropertyType,
		"down_payment":       attrs.DownPayment,
		"credit_score":       attrs.CreditScore,
		"has_agent":          attrs.HasAgent,
		"notes":              notes,
		"zip":                attrs.Zip,
		"living_in_property": attrs.LivingInProperty,
		"ownership":          attrs.Ownership,
		"condition":          attrs.Condition,
		"motivation":         attrs.Motivation,
	}
}

func extractKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

// RenderScoring fills the scoring template with every lead attribute.
func RenderScoring(attrs models.LeadAttributes) (string, error) {
	vars := leadVars(attrs)
	tmpl := prompts.NewPromptTemplate(Scoring, extractKeys(vars))
	return tmpl.Format(vars)
}

// RenderFollowup fills the follow-up message template.
func RenderFollowup(attrs models.LeadAttributes, signOff string) (string, error) {
	vars := leadVars(attrs)
	vars["sign_off"] = signOff
	tmpl := prompts.NewPromptTemplate(Followup, extractKeys(vars))
	return tmpl.Format(vars)
}
