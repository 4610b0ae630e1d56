package dates

import (
	"fmt"
	"strings"

	"github.com/duodate-app/duodate-api/internal/types"
)

// Fixed French phrase tables translating quiz enum values to prose.
// Unknown or missing values render as "non spécifié" so the prompt
// shape never varies with input coverage.
const unspecified = "non spécifié"

var moodPhrases = map[string]string{
	"romantic":    "une ambiance romantique et intime",
	"fun":         "une ambiance fun et ludique",
	"relaxed":     "une ambiance détendue et sans pression",
	"adventurous": "une ambiance aventureuse et pleine de surprises",
}

var activityPhrases = map[string]string{
	"food":    "une activité autour de la gastronomie",
	"culture": "une activité culturelle",
	"outdoor": "une activité en plein air",
	"sport":   "une activité sportive",
	"home":    "une activité à la maison",
}

var budgetPhrases = map[string]string{
	"low":      "un petit budget (moins de 30€)",
	"moderate": "un budget modéré (30€ à 80€)",
	"high":     "un budget confortable (80€ à 150€)",
	"luxury":   "un budget luxe (plus de 150€)",
}

var durationPhrases = map[string]string{
	"short":    "une durée courte (1 à 2 heures)",
	"half_day": "une demi-journée",
	"evening":  "une soirée",
	"full_day": "une journée entière",
}

var radiusPhrases = map[string]string{
	"walking":  "accessible à pied",
	"city":     "dans la ville",
	"region":   "jusqu'à une heure de route",
	"anywhere": "sans limite de distance",
}

func phrase(table map[string]string, value string) string {
	if p, ok := table[strings.ToLower(strings.TrimSpace(value))]; ok {
		return p
	}
	return unspecified
}

// systemInstruction is the fixed system message for solo generation:
// mood rules, budget thresholds, and the JSON-only response format.
const systemInstruction = `Tu es un expert en organisation de rendez-vous amoureux en France.
Règles d'ambiance: romantic -> catégories romantic; fun -> catégories fun; relaxed -> catégories relaxed; adventurous -> catégories adventurous.
Règles de budget: low < 30€, moderate 30-80€, high 80-150€, luxury > 150€.
Réponds UNIQUEMENT avec un objet JSON valide, sans texte autour, sans balises markdown.`

// roomSystemInstruction is the fixed system message for couple (room)
// generation, with the broader category set and the compatibility score
// requirement.
const roomSystemInstruction = `Tu es un expert en organisation de rendez-vous pour couples.
Tu reçois les préférences des deux partenaires et tu proposes des idées qui leur conviennent à tous les deux.
Catégories autorisées: romantic, outdoor, food, culture, active, relax, surprise.
Chaque suggestion doit inclure un "compatibility_score" entre 0 et 100 estimant à quel point elle satisfait les DEUX partenaires.
Règles de budget: low < 30€, moderate 30-80€, high 80-150€, luxury > 150€.
Réponds UNIQUEMENT avec un objet JSON valide, sans texte autour, sans balises markdown.`

// buildPrompt renders quiz answers (plus optional location) into the
// user prompt. Pure and deterministic. When a location is present an
// extra geolocation clause and a 7th "area" output field are requested;
// when absent both are omitted.
func buildPrompt(answers types.QuizAnswers, location *types.UserLocation) string {
	var b strings.Builder

	b.WriteString("Propose des idées de rendez-vous pour un couple avec les préférences suivantes:\n")
	fmt.Fprintf(&b, "- Ambiance souhaitée: %s\n", phrase(moodPhrases, answers[types.QuizKeyMood]))
	fmt.Fprintf(&b, "- Type d'activité: %s\n", phrase(activityPhrases, answers[types.QuizKeyActivityType]))
	fmt.Fprintf(&b, "- Budget: %s\n", phrase(budgetPhrases, answers[types.QuizKeyBudget]))
	fmt.Fprintf(&b, "- Durée: %s\n", phrase(durationPhrases, answers[types.QuizKeyDuration]))
	fmt.Fprintf(&b, "- Mobilité: %s\n", phrase(radiusPhrases, answers[types.QuizKeyMobilityRadius]))

	if location != nil {
		fmt.Fprintf(&b, "\nLe couple se trouve à %s (latitude %.4f, longitude %.4f). Propose des lieux ou quartiers réels à proximité.\n",
			location.City, location.Latitude, location.Longitude)
	}

	b.WriteString(`
Génère EXACTEMENT 5 suggestions. Retourne la réponse STRICTEMENT comme un objet JSON:
{
  "suggestions": [
    {
      "title": "Titre court de l'idée de rendez-vous",
      "description": "2-3 phrases décrivant l'idée et pourquoi elle correspond aux préférences",
      "category": "romantic|fun|relaxed|adventurous",
      "duration": "durée estimée, ex: 2h",
      "cost": "low|moderate|high|luxury",
      "location_type": "indoor|outdoor|city|countryside"`)

	if location != nil {
		b.WriteString(`,
      "area": "quartier ou lieu précis à proximité"`)
	}

	b.WriteString(`
    }
  ]
}`)

	return b.String()
}

// buildRoomPrompt renders both partners' answers, plus optional
// location, nearby places, and events, into the couple-mode prompt.
func buildRoomPrompt(couple types.CoupleContext, location *types.UserLocation, places []types.PlaceCandidate, events []types.EventCandidate) string {
	var b strings.Builder

	b.WriteString("Deux partenaires préparent un rendez-vous ensemble.\n\nPréférences du partenaire 1:\n")
	writeAnswerLines(&b, couple.User1)
	b.WriteString("\nPréférences du partenaire 2:\n")
	writeAnswerLines(&b, couple.User2)

	if location != nil {
		fmt.Fprintf(&b, "\nIls se trouvent à %s (latitude %.4f, longitude %.4f).\n",
			location.City, location.Latitude, location.Longitude)
	}
	if len(places) > 0 {
		b.WriteString("\nLieux réels à proximité pouvant inspirer les suggestions:\n")
		for _, p := range places {
			fmt.Fprintf(&b, "- %s (%s)\n", p.Name, p.Category)
		}
	}
	if len(events) > 0 {
		b.WriteString("\nÉvénements à venir à proximité:\n")
		for _, e := range events {
			if e.Venue != "" {
				fmt.Fprintf(&b, "- %s à %s\n", e.Name, e.Venue)
			} else {
				fmt.Fprintf(&b, "- %s\n", e.Name)
			}
		}
	}

	b.WriteString(`
Génère EXACTEMENT 5 suggestions qui conviennent aux deux partenaires. Retourne la réponse STRICTEMENT comme un objet JSON:
{
  "suggestions": [
    {
      "title": "Titre court de l'idée de rendez-vous",
      "description": "2-3 phrases décrivant l'idée",
      "category": "romantic|outdoor|food|culture|active|relax|surprise",
      "duration": "durée estimée, ex: 2h",
      "cost": "low|moderate|high|luxury",
      "location_type": "indoor|outdoor|city|countryside",
      "compatibility_score": <int 0-100>
    }
  ]
}`)

	return b.String()
}

func writeAnswerLines(b *strings.Builder, answers types.QuizAnswers) {
	fmt.Fprintf(b, "- Ambiance: %s\n", phrase(moodPhrases, answers[types.QuizKeyMood]))
	fmt.Fprintf(b, "- Activité: %s\n", phrase(activityPhrases, answers[types.QuizKeyActivityType]))
	fmt.Fprintf(b, "- Budget: %s\n", phrase(budgetPhrases, answers[types.QuizKeyBudget]))
	fmt.Fprintf(b, "- Durée: %s\n", phrase(durationPhrases, answers[types.QuizKeyDuration]))
}
