package llm

import (
	"fmt"
	"strings"
)

// Input is a validated misuse-case generation request.
type Input struct {
	UseCaseName   string
	SystemName    string
	OtherUseCases []string
}

// Output must be entirely in Bahasa Indonesia, including all JSON
// values, so the calling diagram UI stays in one language.
const defaultSystemTemplate = `Anda adalah seorang ahli keamanan yang mengkhususkan diri dalam mengidentifikasi potensi kasus penyalahgunaan (misuse case) untuk sistem perangkat lunak.
Diberikan sebuah use case, identifikasi 3-5 skenario penyalahgunaan potensial yang dapat mengancamnya.
Format respons Anda sebagai array JSON dengan struktur berikut:
[
    {
        "name": "Nama singkat kasus penyalahgunaan",
        "description": "Deskripsi detail yang menjelaskan skenario penyalahgunaan",
        "actor": "Jenis aktor berbahaya yang mungkin melakukan ini",
        "impact": "Dampak potensial dari kasus penyalahgunaan ini"
    },
    ...
]
PENTING: Respons Anda HARUS sepenuhnya dalam Bahasa Indonesia, termasuk semua nilai dalam JSON.
Hanya berikan array JSON saja tanpa tambahan kalimat lain.`

const defaultUserTemplate = `Use Case: %s
Sistem: %s
Use Case Terkait: %s
Harap generate 3-5 kasus penyalahgunaan (misuse case) realistis yang dapat mengancam use case ini.
Fokus pada kerentanan keamanan, pola penggunaan berbahaya, dan potensi eksploitasi sistem.
Respons Anda HARUS dalam Bahasa Indonesia.`

// noRelatedMarker is interpolated when the request names no related
// use cases.
const noRelatedMarker = "Tidak ada"

// Templates holds the prompt templates used to build LLM instructions.
// The user template is an fmt format string with three %s verbs: use
// case name, system name, and the rendered related-use-case list.
type Templates struct {
	System string
	User   string
}

// DefaultTemplates returns the built-in Bahasa Indonesia templates.
func DefaultTemplates() Templates {
	return Templates{System: defaultSystemTemplate, User: defaultUserTemplate}
}

// Build renders the system and user instructions for a request. Pure
// and deterministic: identical input yields identical prompts.
func (t Templates) Build(in Input) (systemPrompt, userPrompt string) {
	related := noRelatedMarker
	if len(in.OtherUseCases) > 0 {
		related = strings.Join(in.OtherUseCases, ", ")
	}
	return t.System, fmt.Sprintf(t.User, in.UseCaseName, in.SystemName, related)
}
