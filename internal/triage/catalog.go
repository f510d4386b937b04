package triage

import "github.com/savegress/carebridge/pkg/models"

// CommonSymptoms is the canonical symptom vocabulary, indexed by language.
// The English list doubles as the feature order for the scoring vector.
var CommonSymptoms = map[string][]string{
	"en": {
		"fever", "cough", "headache", "diarrhea", "vomiting", "abdominal pain",
		"body ache", "fatigue", "shortness of breath", "chest pain", "dizziness",
		"nausea", "skin rash", "joint pain", "loss of appetite",
	},
	"bn": {
		"জ্বর", "কাশি", "মাথাব্যথা", "ডায়রিয়া", "বমি", "পেট ব্যথা",
		"শরীর ব্যথা", "ক্লান্তি", "শ্বাসকষ্ট", "বুকে ব্যথা", "মাথা ঘোরা",
		"বমি বমি ভাব", "চর্মরোগ", "গাঁটে ব্যথা", "ক্ষুধা কমে যাওয়া",
	},
}

// symptomTranslations maps Bengali symptom phrases to canonical English
// tokens. Longer phrases are listed before their substrings so replacement
// is unambiguous ("বমি বমি ভাব" before "বমি").
var symptomTranslations = []struct {
	bn string
	en string
}{
	{"বমি বমি ভাব", "nausea"},
	{"জ্বর", "fever"},
	{"কাশি", "cough"},
	{"মাথাব্যথা", "headache"},
	{"ডায়রিয়া", "diarrhea"},
	{"বমি", "vomiting"},
	{"পেট ব্যথা", "abdominal pain"},
	{"শরীর ব্যথা", "body ache"},
	{"ক্লান্তি", "fatigue"},
	{"শ্বাসকষ্ট", "shortness of breath"},
	{"বুকে ব্যথা", "chest pain"},
	{"মাথা ঘোরা", "dizziness"},
	{"চর্মরোগ", "skin rash"},
	{"গাঁটে ব্যথা", "joint pain"},
	{"ক্ষুধা কমে যাওয়া", "loss of appetite"},
}

// DefaultCatalog is the fixed condition catalog for rural primary triage.
// Declaration order breaks confidence ties.
var DefaultCatalog = []Condition{
	{
		Name:     "Common Cold",
		NameBn:   "সাধারণ সর্দি",
		Symptoms: []string{"fever", "cough", "headache", "body ache", "fatigue"},
		Severity: models.SeverityMild,
		Advice:   "Rest, drink fluids, take paracetamol if needed. Consult doctor if symptoms persist beyond 7 days.",
		AdviceBn: "বিশ্রাম নিন, তরল পান করুন, প্রয়োজনে প্যারাসিটামল খান। ৭ দিনের বেশি উপসর্গ থাকলে ডাক্তারের পরামর্শ নিন।",
	},
	{
		Name:     "Gastroenteritis",
		NameBn:   "গ্যাস্ট্রোএন্টেরাইটিস",
		Symptoms: []string{"diarrhea", "vomiting", "abdominal pain", "nausea", "fever"},
		Severity: models.SeverityModerate,
		Advice:   "Stay hydrated with ORS. Avoid solid foods initially. Seek immediate care if severe dehydration occurs.",
		AdviceBn: "ওআরএস দিয়ে হাইড্রেটেড থাকুন। প্রথমে শক্ত খাবার এড়িয়ে চলুন। গুরুতর ডিহাইড্রেশন হলে তাৎক্ষণিক চিকিৎসা নিন।",
	},
	{
		Name:     "Hypertension Risk",
		NameBn:   "উচ্চ রক্তচাপের ঝুঁকি",
		Symptoms: []string{"headache", "dizziness", "chest pain", "shortness of breath"},
		Severity: models.SeveritySevere,
		Advice:   "URGENT: Check blood pressure immediately. Reduce salt intake. Consult doctor as soon as possible.",
		AdviceBn: "জরুরি: অবিলম্বে রক্তচাপ পরীক্ষা করুন। লবণ কম খান। যত তাড়াতাড়ি সম্ভব ডাক্তারের পরামর্শ নিন।",
	},
	{
		Name:     "Dengue Suspicion",
		NameBn:   "ডেঙ্গু সন্দেহ",
		Symptoms: []string{"fever", "body ache", "headache", "joint pain", "skin rash"},
		Severity: models.SeveritySevere,
		Advice:   "URGENT: Possible dengue. Get blood test (CBC, NS1). Monitor platelet count. Seek immediate medical attention.",
		AdviceBn: "জরুরি: ডেঙ্গু হতে পারে। রক্ত পরীক্ষা করুন (CBC, NS1)। প্লেটলেট গণনা পর্যবেক্ষণ করুন। অবিলম্বে চিকিৎসা সহায়তা নিন।",
	},
	{
		Name:     "Respiratory Infection",
		NameBn:   "শ্বাসযন্ত্রের সংক্রমণ",
		Symptoms: []string{"cough", "fever", "shortness of breath", "chest pain", "fatigue"},
		Severity: models.SeverityModerate,
		Advice:   "Rest and stay hydrated. Use steam inhalation. Consult doctor if symptoms worsen or fever persists.",
		AdviceBn: "বিশ্রাম নিন এবং হাইড্রেটেড থাকুন। বাষ্প নিশ্বাস নিন। উপসর্গ খারাপ হলে বা জ্বর থাকলে ডাক্তারের পরামর্শ নিন।",
	},
	{
		Name:     "Food Poisoning",
		NameBn:   "খাদ্যে বিষক্রিয়া",
		Symptoms: []string{"vomiting", "diarrhea", "abdominal pain", "nausea", "fever"},
		Severity: models.SeverityModerate,
		Advice:   "Stay hydrated with clear fluids and ORS. Rest your stomach. Seek medical help if symptoms are severe.",
		AdviceBn: "পরিষ্কার তরল এবং ওআরএস দিয়ে হাইড্রেটেড থাকুন। পেটকে বিশ্রাম দিন। গুরুতর উপসর্গ হলে চিকিৎসা সহায়তা নিন।",
	},
	{
		Name:     "Typhoid Fever",
		NameBn:   "টাইফয়েড জ্বর",
		Symptoms: []string{"fever", "headache", "abdominal pain", "fatigue", "loss of appetite"},
		Severity: models.SeveritySevere,
		Advice:   "URGENT: Get Widal test and blood culture. Take complete rest. Requires antibiotic treatment - consult doctor immediately.",
		AdviceBn: "জরুরি: উইডাল টেস্ট এবং ব্লাড কালচার করুন। সম্পূর্ণ বিশ্রাম নিন। অ্যান্টিবায়োটিক চিকিৎসা প্রয়োজন - অবিলম্বে ডাক্তারের পরামর্শ নিন।",
	},
	{
		Name:     "Malaria Suspicion",
		NameBn:   "ম্যালেরিয়া সন্দেহ",
		Symptoms: []string{"fever", "body ache", "headache", "fatigue", "nausea"},
		Severity: models.SeveritySevere,
		Advice:   "URGENT: Get malaria test (blood smear or RDT). Take antipyretics for fever. Seek immediate medical attention.",
		AdviceBn: "জরুরি: ম্যালেরিয়া পরীক্ষা করুন। জ্বরের জন্য জ্বরনাশক নিন। অবিলম্বে চিকিৎসা সহায়তা নিন।",
	},
}

// localizedName returns the condition name for the given language tag.
func (c *Condition) localizedName(lang string) string {
	if lang == "bn" && c.NameBn != "" {
		return c.NameBn
	}
	return c.Name
}

// localizedAdvice returns the advice text for the given language tag.
func (c *Condition) localizedAdvice(lang string) string {
	if lang == "bn" && c.AdviceBn != "" {
		return c.AdviceBn
	}
	return c.Advice
}
