package textnorm

// Substitution replaces every occurrence of From with To.
type Substitution struct {
	From string
	To   string
}

// Multiword maps a technical phrase onto the single token that represents
// it during tokenization. Several phrases may share one token.
type Multiword struct {
	Phrase string
	Token  string
}

// DefaultSubstitutions expands or contracts abbreviations. Order matters:
// substitutions are applied one after another, case-sensitively.
var DefaultSubstitutions = []Substitution{
	{From: "nlp", To: "natural language processing"},
	{From: "NLP", To: "Natural Language Processing"},
	{From: "amazon web services", To: "aws"},
	{From: "Amazon Web Services", To: "AWS"},
	{From: "keras 2.0", To: "keras"},
	{From: "Keras 2.0", To: "Keras"},
}

// DefaultMultiwords lists the phrases that are counted as one word cloud entry.
var DefaultMultiwords = []Multiword{
	{Phrase: "data science", Token: "datascience"},
	{Phrase: "machine learning", Token: "machinelearning"},
	{Phrase: "deep learning", Token: "deeplearning"},
	{Phrase: "time series", Token: "timeseries"},
	{Phrase: "big data", Token: "bigdata"},
	{Phrase: "parallel computing", Token: "parallelcomputing"},
	{Phrase: "parallel processing", Token: "parallelcomputing"},
	{Phrase: "natural language processing", Token: "naturallanguageprocessing"},
	{Phrase: "feature engineering", Token: "featureengineering"},
	{Phrase: "software engineering", Token: "softwareengineering"},
}
