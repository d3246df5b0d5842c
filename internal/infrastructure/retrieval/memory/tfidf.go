// Package memory 提供进程内 TF-IDF 检索实现，作为默认的检索后端。
// 语料规模小且只读，无需外部向量库即可提供按相关性降序的候选。
package memory

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

// vectorizer 简单的 TF-IDF 向量化器。
// 从语料构建词表与 IDF，向量经 L2 归一化后点积即余弦相似度。
type vectorizer struct {
	vocabulary   map[string]int
	idf          []float64
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

func newVectorizer() *vectorizer {
	return &vectorizer{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*|\p{N}+`),
		stopwords:    defaultStopwords(),
	}
}

// fit 从语料构建词表与 IDF
func (v *vectorizer) fit(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus")
	}

	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range v.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus")
	}

	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		v.vocabulary[term] = i
		// 平滑 IDF
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	v.dimension = len(terms)
	return nil
}

// embed 计算文本的 TF-IDF 向量（L2 归一化）
func (v *vectorizer) embed(text string) []float64 {
	vec := make([]float64, v.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range v.tokenize(text) {
		if idx, ok := v.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * v.idf[idx]
	}

	norm := 0.0
	for _, x := range vec {
		norm += x * x
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// tokenize 切分为小写词元。CJK 连续段没有词边界，按字符二元组切分
func (v *vectorizer) tokenize(text string) []string {
	lower := strings.ToLower(text)
	raw := v.tokenPattern.FindAllString(lower, -1)

	var out []string
	for _, t := range raw {
		if _, isStop := v.stopwords[t]; isStop {
			continue
		}
		if isCJK(t) {
			out = append(out, cjkBigrams(t)...)
			continue
		}
		out = append(out, t)
	}
	return out
}

func isCJK(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			return true
		}
	}
	return false
}

// cjkBigrams 把 CJK 段切分为字符二元组；单字符段原样返回
func cjkBigrams(s string) []string {
	runes := []rune(s)
	if len(runes) <= 2 {
		return []string{s}
	}
	grams := make([]string, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		grams = append(grams, string(runes[i:i+2]))
	}
	return grams
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to",
		"of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were",
		"be", "been", "being", "it", "this", "that", "these", "those", "from",
		"up", "down", "over", "under", "than", "so", "such", "into", "about",
		"between", "through", "during", "before", "after", "out", "off", "own",
		"same", "too", "very", "can", "will", "just", "should", "now", "what",
		"which", "who", "whom", "we", "our", "you", "your",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
