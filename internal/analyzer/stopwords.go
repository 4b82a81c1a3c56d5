package analyzer

// stopWords are dropped before counting: English function words, contraction
// fragments left by punctuation stripping, and link/retweet noise.
var stopWords = toSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"of", "with", "by", "from", "as", "is", "was", "are", "were", "been",
	"be", "have", "has", "had", "do", "does", "did", "will", "would",
	"could", "should", "may", "might", "must", "this", "that", "these",
	"those", "i", "you", "he", "she", "it", "we", "they", "what", "which",
	"who", "when", "where", "why", "how", "all", "each", "every", "both",
	"few", "more", "most", "other", "some", "such", "no", "not", "only",
	"own", "same", "so", "than", "too", "very", "just", "can", "your",
	"my", "his", "her", "its", "our", "their", "if", "then", "else",
	"about", "into", "through", "during", "before", "after", "above",
	"below", "between", "under", "again", "further", "once", "here",
	"there", "any", "out", "up", "down", "off", "over",
	"https", "http", "www", "com", "t", "co", "rt", "amp",
	"s", "re", "ve", "ll", "don", "doesn", "didn", "won", "wouldn",
	"couldn", "shouldn",
	"get", "got", "getting", "like", "now", "new", "one", "also", "us",
	"im", "ive", "dont", "youre", "theyre", "weve", "thats", "hes",
	"shes", "cant", "wont", "didnt", "doesnt", "isnt", "arent", "wasnt",
	"werent", "hasnt", "havent", "hadnt", "being", "really", "going",
	"make", "made", "making", "thing", "things", "way", "want", "see",
	"know", "think", "time", "good", "well", "back", "even", "still",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
