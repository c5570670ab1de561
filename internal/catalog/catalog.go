// Package catalog holds the topic graph used to pick what a child sees
// next when the client does not name a topic itself. Edges point from a
// topic to the topics that naturally follow it.
package catalog

import "sort"

// Graph is a directed topic graph with a set of starter topics for
// children with no history yet.
type Graph struct {
	next     map[string][]string
	starters []string
	topics   []string
}

// New builds a graph from an adjacency map and an ordered starter list.
func New(next map[string][]string, starters []string) *Graph {
	set := make(map[string]bool)
	for topic, succs := range next {
		set[topic] = true
		for _, s := range succs {
			set[s] = true
		}
	}
	for _, s := range starters {
		set[s] = true
	}

	topics := make([]string, 0, len(set))
	for t := range set {
		topics = append(topics, t)
	}
	sort.Strings(topics)

	return &Graph{next: next, starters: starters, topics: topics}
}

// Default returns the built-in early-learning topic graph.
func Default() *Graph {
	return New(map[string][]string{
		"gravity":      {"planets", "forces"},
		"planets":      {"solar_system", "stars"},
		"solar_system": {"galaxies", "astronauts"},
		"animals":      {"habitats", "food_chains"},
		"habitats":     {"ecosystems", "weather"},
		"numbers":      {"addition", "shapes"},
		"addition":     {"subtraction", "multiplication"},
		"colors":       {"painting", "light"},
	}, []string{"animals", "colors", "numbers", "planets", "gravity"})
}

// Topics returns every topic in the graph, sorted.
func (g *Graph) Topics() []string {
	return append([]string(nil), g.topics...)
}

// Known reports whether the topic appears anywhere in the graph.
func (g *Graph) Known(topic string) bool {
	i := sort.SearchStrings(g.topics, topic)
	return i < len(g.topics) && g.topics[i] == topic
}

// Next returns the topics that follow the given one.
func (g *Graph) Next(topic string) []string {
	return append([]string(nil), g.next[topic]...)
}

// Starter returns the first starter topic the child has not seen,
// falling back to the first starter overall.
func (g *Graph) Starter(seen map[string]bool) string {
	if len(g.starters) == 0 {
		return ""
	}
	for _, t := range g.starters {
		if !seen[t] {
			return t
		}
	}
	return g.starters[0]
}

// Suggest picks the next topic for a child. Interests are ordered
// strongest first; the first unseen successor of an interest wins, and
// a child with no usable graph edge gets a starter.
func (g *Graph) Suggest(interests []string, seen map[string]bool) string {
	for _, topic := range interests {
		for _, succ := range g.next[topic] {
			if !seen[succ] {
				return succ
			}
		}
	}
	return g.Starter(seen)
}
