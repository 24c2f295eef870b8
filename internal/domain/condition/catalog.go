package condition

// Info describes one neurological condition shown to patients and clinicians.
type Info struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Description            string   `json:"description"`
	Symptoms               []string `json:"symptoms"`
	Prevalence             string   `json:"prevalence"`
	EarlyDetectionBenefits []string `json:"earlyDetectionBenefits"`
}

var catalog = []Info{
	{
		ID:                     "alzheimers",
		Name:                   "Alzheimer's Disease",
		Description:            "A progressive neurodegenerative disorder that affects memory, thinking, and behavior.",
		Symptoms:               []string{"Memory loss", "Confusion", "Difficulty with language", "Changes in mood and behavior"},
		Prevalence:             "135,000+ Nepalis",
		EarlyDetectionBenefits: []string{"Slower progression with treatment", "Better quality of life", "Family planning opportunities"},
	},
	{
		ID:                     "epilepsy",
		Name:                   "Epilepsy",
		Description:            "A neurological disorder characterized by recurrent seizures due to abnormal brain activity.",
		Symptoms:               []string{"Seizures", "Temporary confusion", "Loss of consciousness", "Psychic symptoms"},
		Prevalence:             "150,000-210,000 Nepalis",
		EarlyDetectionBenefits: []string{"Effective seizure control", "Reduced injury risk", "Improved social function"},
	},
	{
		ID:                     "parkinsons",
		Name:                   "Parkinson's Disease",
		Description:            "A progressive disorder affecting movement, often including tremors and stiffness.",
		Symptoms:               []string{"Tremor", "Bradykinesia", "Muscle rigidity", "Postural instability"},
		Prevalence:             "15,000-30,000 Nepalis",
		EarlyDetectionBenefits: []string{"Symptom management", "Lifestyle modifications", "Treatment planning"},
	},
	{
		ID:                     "stroke",
		Name:                   "Stroke",
		Description:            "Occurs when blood supply to part of the brain is interrupted or reduced.",
		Symptoms:               []string{"Sudden numbness", "Confusion", "Trouble speaking", "Severe headache"},
		Prevalence:             "90,000-120,000 annually",
		EarlyDetectionBenefits: []string{"Immediate treatment", "Reduced brain damage", "Better recovery outcomes"},
	},
	{
		ID:                     "brain-tumor",
		Name:                   "Brain Tumor",
		Description:            "Abnormal growth of cells within the brain or central spinal canal.",
		Symptoms:               []string{"Headaches", "Nausea", "Vision problems", "Cognitive changes"},
		Prevalence:             "6,000-9,000 Nepalis",
		EarlyDetectionBenefits: []string{"Surgical options", "Treatment effectiveness", "Survival rates improvement"},
	},
	{
		ID:                     "depression",
		Name:                   "Depression",
		Description:            "A mental health disorder characterized by persistent sadness and loss of interest.",
		Symptoms:               []string{"Persistent sadness", "Loss of interest", "Fatigue", "Concentration problems"},
		Prevalence:             "3.6 million adults",
		EarlyDetectionBenefits: []string{"Effective treatments", "Prevent worsening", "Improved functioning"},
	},
}

// All returns a copy of the catalog in display order.
func All() []Info {
	out := make([]Info, len(catalog))
	copy(out, catalog)
	return out
}

// ByID looks up one entry.
func ByID(id string) (Info, bool) {
	for _, c := range catalog {
		if c.ID == id {
			return c, true
		}
	}
	return Info{}, false
}
