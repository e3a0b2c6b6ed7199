package crawl

import (
	"regexp"
	"strings"
)

// relevanceKeywords qualify a link as plausibly leading to a staff or
// doctor listing. Matched against anchor text, title attributes, and URL
// paths. Broad by design; precision is a tunable heuristic, not a
// contract.
var relevanceKeywords = []string{
	"doctor", "doctors", "physician", "physicians", "our team", "our-team",
	"team", "staff", "specialist", "specialists", "consultant",
	"consultants", "department", "departments", "faculty", "surgeon",
	"surgeons", "practitioner", "medical team", "meet the team", "find a doctor",
	"gynecologist", "gynaecologist", "obstetrician", "cardiologist",
	"dermatologist", "neurologist", "orthopedic", "orthopaedic",
	"pediatrician", "paediatrician", "psychiatrist", "oncologist",
	"urologist", "ent", "dentist", "ophthalmologist", "radiologist",
	"anesthesiologist", "physiotherapist",
}

// rolePathRe matches role-like URL path segments such as /doctors/ or
// /physician/.
var rolePathRe = regexp.MustCompile(`(?i)/(doctor|physician|specialist|consultant|surgeon|staff|team|department)s?(/|$)`)

// excludeKeywords drop obviously irrelevant URLs from the final result.
var excludeKeywords = []string{
	"login", "signin", "sign-in", "signup", "sign-up", "register", "cart",
	"checkout", "admin", "blog", "news", "career", "careers", "privacy",
	"terms", "cookie", "facebook", "twitter", "instagram", "linkedin",
	"youtube", "mailto:", "javascript:", ".pdf", ".jpg", ".png",
}

// candidateLink is a link plus the evidence that qualified it. Used only
// for filtering; discarded after the crawl.
type candidateLink struct {
	url        string
	anchorText string
	titleAttr  string
}

// relevant reports whether the link plausibly leads to a doctor listing.
// The specialty hint participates in matching so that, e.g., a
// "Cardiology" section qualifies when the caller asks for cardiologists.
func relevant(link candidateLink, specialty string) bool {
	text := strings.ToLower(link.anchorText)
	title := strings.ToLower(link.titleAttr)
	path := strings.ToLower(link.url)

	terms := relevanceKeywords
	if s := strings.ToLower(strings.TrimSpace(specialty)); s != "" {
		terms = append(append([]string{}, relevanceKeywords...), s)
	}

	for _, kw := range terms {
		if strings.Contains(text, kw) || strings.Contains(title, kw) || strings.Contains(path, kw) {
			return true
		}
	}

	return rolePathRe.MatchString(link.url)
}

// excluded reports whether a URL matches the exclusion keyword list.
func excluded(url string) bool {
	lower := strings.ToLower(url)
	for _, kw := range excludeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
