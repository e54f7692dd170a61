package parser

import "github.com/viant/shapely"

// keyTrie is a byte indexed trie compiled from the known field names of an
// object shape. Matching proceeds incrementally as decoded key bytes arrive,
// which keeps key dispatch suspension safe.
type keyTrie struct {
	nodes []trieEntry
}

type trieEntry struct {
	children map[byte]int32
	terminal int32 //field ordinal, -1 when not a key end
}

func newKeyTrie(fields []shapely.Field) *keyTrie {
	trie := &keyTrie{nodes: []trieEntry{{terminal: -1}}}
	for i := range fields {
		trie.insert(fields[i].Name, int32(i))
	}
	return trie
}

func (t *keyTrie) insert(key string, ordinal int32) {
	at := int32(0)
	for i := 0; i < len(key); i++ {
		b := key[i]
		entry := &t.nodes[at]
		if entry.children == nil {
			entry.children = map[byte]int32{}
		}
		next, ok := entry.children[b]
		if !ok {
			next = int32(len(t.nodes))
			entry.children[b] = next
			t.nodes = append(t.nodes, trieEntry{terminal: -1})
		}
		at = next
	}
	t.nodes[at].terminal = ordinal
}

// step advances the cursor by one key byte; -1 means the key fell off the trie.
func (t *keyTrie) step(at int32, b byte) int32 {
	if at < 0 {
		return -1
	}
	next, ok := t.nodes[at].children[b]
	if !ok {
		return -1
	}
	return next
}

// terminal resolves the matched field ordinal, -1 for unknown keys.
func (t *keyTrie) terminal(at int32) int {
	if at < 0 {
		return -1
	}
	return int(t.nodes[at].terminal)
}
