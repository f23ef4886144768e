// Package ai turns VoiceBridge features into prompts for the generative model
// and decodes its JSON answers into typed results.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

type Correction struct {
	OriginalTranscript string   `json:"originalTranscript"`
	CorrectedText      string   `json:"correctedText"`
	Confidence         float64  `json:"confidence"`
	Changes            []string `json:"changes"`
}

type ColorReport struct {
	Color       string   `json:"color"`
	Transcript  string   `json:"transcript"`
	Emotion     string   `json:"emotion"`
	Intensity   int      `json:"intensity"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
}

type MirrorResult struct {
	Transcript      string `json:"transcript"`
	DetectedEmotion string `json:"detectedEmotion"`
	Reframed        string `json:"reframedMessage"`
	Affirmation     string `json:"affirmation"`
	CopingTip       string `json:"copingTip"`
}

type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type PlayTurn struct {
	Response         string   `json:"response"`
	Emotion          string   `json:"emotion"`
	SuggestedActions []string `json:"suggestedActions"`
}

type Story struct {
	Transcript  string `json:"transcript,omitempty"`
	Title       string `json:"title"`
	Story       string `json:"story"`
	ImagePrompt string `json:"imagePrompt,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

type WordFeedback struct {
	Word  string `json:"word"`
	Heard string `json:"heard"`
	Tip   string `json:"tip"`
}

type SpeechAnalysis struct {
	TranscribedText string         `json:"transcribedText"`
	Accuracy        float64        `json:"accuracy"`
	ClarityScore    float64        `json:"clarityScore"`
	OverallScore    float64        `json:"overallScore"`
	Feedback        string         `json:"feedback"`
	Mispronounced   []WordFeedback `json:"mispronounced"`
	Encouragement   string         `json:"encouragement"`
}

type EmotionClassification struct {
	Transcript string             `json:"transcript"`
	Emotion    string             `json:"emotion"`
	Confidence float64            `json:"confidence"`
	Scores     map[string]float64 `json:"scores"`
}

type AnalyzeInput struct {
	TargetText      string
	TranscribedText string
	Audio           *Audio
	Audience        string
	Persona         string
}

// Assistant implements every AI feature on top of a Backend.
type Assistant struct {
	backend Backend
}

func NewAssistant(backend Backend) *Assistant {
	return &Assistant{backend: backend}
}

// CorrectSpeech cleans up a transcript. With audio it transcribes and corrects
// in a single model call.
func (a *Assistant) CorrectSpeech(ctx context.Context, transcript string, audio *Audio) (*Correction, error) {
	prompt := "Correct the following speech transcript from a person with a speech difference. " +
		"Fix recognition errors, stutters and repetitions while keeping their meaning and tone.\n" +
		"Transcript: " + quote(transcript)
	if audio != nil {
		prompt = "Transcribe the attached audio from a person with a speech difference, " +
			"then correct recognition errors, stutters and repetitions while keeping their meaning and tone. " +
			"Put the verbatim transcription in originalTranscript."
	}
	prompt += "\nRespond as JSON: " + `{"originalTranscript": string, "correctedText": string, "confidence": number 0-1, "changes": [string]}`

	var out Correction
	if err := a.generateJSON(ctx, Request{System: Persona("", "assistant"), Prompt: prompt, Audio: audio}, &out); err != nil {
		return nil, err
	}
	if out.OriginalTranscript == "" {
		out.OriginalTranscript = transcript
	}
	return &out, nil
}

func (a *Assistant) ColorReport(ctx context.Context, color string, audio *Audio, persona string) (*ColorReport, error) {
	prompt := fmt.Sprintf("A child picked the color %s to describe how they feel and then talked about it in the attached audio. "+
		"Transcribe what they said, identify the emotion, rate its intensity from 1 to 5 and answer with a short, kind message "+
		"and up to three gentle suggestions.\nRespond as JSON: %s", quote(color),
		`{"color": string, "transcript": string, "emotion": string, "intensity": number, "message": string, "suggestions": [string]}`)

	var out ColorReport
	if err := a.generateJSON(ctx, Request{System: Persona(persona, "friend"), Prompt: prompt, Audio: audio}, &out); err != nil {
		return nil, err
	}
	if out.Color == "" {
		out.Color = color
	}
	return &out, nil
}

func (a *Assistant) Mirror(ctx context.Context, text string, audio *Audio, persona string) (*MirrorResult, error) {
	prompt := "A child shared how they feel"
	if audio != nil {
		prompt += " in the attached audio. Transcribe it first."
	} else {
		prompt += ": " + quote(text) + "."
	}
	prompt += " Name the feeling, reflect it back in a more hopeful way, add a short affirmation and one simple coping tip.\n" +
		"Respond as JSON: " + `{"transcript": string, "detectedEmotion": string, "reframedMessage": string, "affirmation": string, "copingTip": string}`

	var out MirrorResult
	if err := a.generateJSON(ctx, Request{System: Persona(persona, "mirror"), Prompt: prompt, Audio: audio}, &out); err != nil {
		return nil, err
	}
	if out.Transcript == "" {
		out.Transcript = text
	}
	return &out, nil
}

func (a *Assistant) Play(ctx context.Context, scenario, childInput string, history []HistoryTurn, persona string) (*PlayTurn, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "You are playing a pretend-play scenario with a child: %s.\n", quote(scenario))
	if len(history) > 0 {
		b.WriteString("Conversation so far:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Content)
		}
	}
	fmt.Fprintf(&b, "The child now says: %s\n", quote(childInput))
	b.WriteString("Reply in character with one or two short sentences, name the emotion your character shows and offer up to three things the child could do next.\n")
	b.WriteString("Respond as JSON: " + `{"response": string, "emotion": string, "suggestedActions": [string]}`)

	var out PlayTurn
	if err := a.generateJSON(ctx, Request{System: Persona(persona, "friend"), Prompt: b.String()}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WorldBuild writes a short story from the child's idea. ImageURL is left
// empty; the caller decides whether to illustrate it.
func (a *Assistant) WorldBuild(ctx context.Context, text string, audio *Audio, persona string) (*Story, error) {
	prompt := "A child described an imaginary world"
	if audio != nil {
		prompt += " in the attached audio. Transcribe it first."
	} else {
		prompt += ": " + quote(text) + "."
	}
	prompt += " Write a short, safe, joyful story (under 150 words) set in that world with a title, " +
		"and a one sentence prompt for a colorful child-friendly illustration of it.\n" +
		"Respond as JSON: " + `{"transcript": string, "title": string, "story": string, "imagePrompt": string}`

	var out Story
	if err := a.generateJSON(ctx, Request{System: Persona(persona, "explorer"), Prompt: prompt, Audio: audio}, &out); err != nil {
		return nil, err
	}
	if out.Transcript == "" {
		out.Transcript = text
	}
	return &out, nil
}

// Illustrate renders an image and returns it as a data URL.
func (a *Assistant) Illustrate(ctx context.Context, prompt string) (string, error) {
	img, err := a.backend.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}
	return DataURL(img.MIMEType, img.Data), nil
}

func (a *Assistant) AnalyzeSpeech(ctx context.Context, in AnalyzeInput) (*SpeechAnalysis, error) {
	audience := in.Audience
	if audience == "" {
		audience = "adult"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Target phrase the speaker tried to say: %s.\n", quote(in.TargetText))
	if in.Audio != nil {
		b.WriteString("Transcribe the attached audio, then compare it with the target phrase.\n")
	} else {
		fmt.Fprintf(&b, "What was recognized: %s.\n", quote(in.TranscribedText))
	}
	fmt.Fprintf(&b, "The speaker is a %s. Score accuracy, clarity and overall from 0 to 100, list mispronounced words with what was heard and a tip, "+
		"and give short feedback plus one encouraging sentence suitable for the speaker.\n", audience)
	b.WriteString("Respond as JSON: " + `{"transcribedText": string, "accuracy": number, "clarityScore": number, "overallScore": number, "feedback": string, "mispronounced": [{"word": string, "heard": string, "tip": string}], "encouragement": string}`)

	var out SpeechAnalysis
	if err := a.generateJSON(ctx, Request{System: Persona(in.Persona, "therapist"), Prompt: b.String(), Audio: in.Audio}, &out); err != nil {
		return nil, err
	}
	if out.TranscribedText == "" {
		out.TranscribedText = in.TranscribedText
	}
	return &out, nil
}

func (a *Assistant) ClassifyEmotion(ctx context.Context, audio *Audio) (*EmotionClassification, error) {
	prompt := "Listen to the attached audio. Transcribe it and classify the speaker's dominant emotion " +
		"(one of: happy, sad, angry, fearful, surprised, calm, frustrated, neutral) with a confidence from 0 to 1, " +
		"plus a score for each emotion.\nRespond as JSON: " +
		`{"transcript": string, "emotion": string, "confidence": number, "scores": {string: number}}`

	var out EmotionClassification
	if err := a.generateJSON(ctx, Request{System: Persona("", "therapist"), Prompt: prompt, Audio: audio}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Assistant) generateJSON(ctx context.Context, req Request, out any) error {
	req.JSON = true
	text, err := a.backend.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(stripFences(text)), out); err != nil {
		return fmt.Errorf("ai: decode model response: %w", err)
	}
	return nil
}

// stripFences removes a ```json ... ``` wrapper some models add even in JSON mode.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func quote(s string) string {
	return fmt.Sprintf("%q", s)
}
