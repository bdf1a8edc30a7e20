package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/modal/internal/log"
)

// SaveKeymapEntry sets vim.keymap[keys] = handler in the config file.
// Comments and formatting in other sections are preserved by editing the
// yaml.Node tree.
func SaveKeymapEntry(configPath, keys, handler string) error {
	doc, err := readDocument(configPath)
	if err != nil {
		return err
	}

	root := doc.Content[0]
	vimNode := mappingValue(root, "vim")
	keymapNode := mappingValue(vimNode, "keymap")
	setScalar(keymapNode, keys, handler)

	if err := writeDocument(configPath, doc); err != nil {
		return err
	}
	log.Info(log.CatConfig, "Saved keymap entry", "keys", keys, "handler", handler, "path", configPath)
	return nil
}

// RemoveKeymapEntry deletes vim.keymap[keys] from the config file. It is
// not an error when the entry does not exist.
func RemoveKeymapEntry(configPath, keys string) error {
	doc, err := readDocument(configPath)
	if err != nil {
		return err
	}

	root := doc.Content[0]
	vimNode := lookup(root, "vim")
	if vimNode == nil {
		return nil
	}
	keymapNode := lookup(vimNode, "keymap")
	if keymapNode == nil || keymapNode.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i < len(keymapNode.Content)-1; i += 2 {
		if keymapNode.Content[i].Value == keys {
			keymapNode.Content = append(keymapNode.Content[:i], keymapNode.Content[i+2:]...)
			return writeDocument(configPath, doc)
		}
	}
	return nil
}

// ReadKeymap returns vim.keymap from the config file with key case
// preserved. Viper lowercases map keys, which would merge "Q" into "q".
func ReadKeymap(configPath string) (map[string]string, error) {
	doc, err := readDocument(configPath)
	if err != nil {
		return nil, err
	}
	vimNode := lookup(doc.Content[0], "vim")
	if vimNode == nil || vimNode.Kind != yaml.MappingNode {
		return nil, nil
	}
	keymapNode := lookup(vimNode, "keymap")
	if keymapNode == nil || keymapNode.Kind != yaml.MappingNode {
		return nil, nil
	}
	var keymap map[string]string
	if err := keymapNode.Decode(&keymap); err != nil {
		return nil, fmt.Errorf("parsing vim.keymap: %w", err)
	}
	return keymap, nil
}

// readDocument parses the config file into a document whose root is a
// mapping. A missing or empty file yields an empty mapping.
func readDocument(configPath string) (*yaml.Node, error) {
	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode}},
		}
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing config: top level is not a mapping")
	}
	return &doc, nil
}

func lookup(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// mappingValue returns the mapping stored under key, creating it or
// replacing a non-mapping value.
func mappingValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			v := mapping.Content[i+1]
			if v.Kind != yaml.MappingNode {
				v = &yaml.Node{Kind: yaml.MappingNode}
				mapping.Content[i+1] = v
			}
			return v
		}
	}
	v := &yaml.Node{Kind: yaml.MappingNode}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		v,
	)
	return v
}

func setScalar(mapping *yaml.Node, key, value string) {
	valueNode := &yaml.Node{Kind: yaml.ScalarNode, Value: value}
	for i := 0; i < len(mapping.Content)-1; i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = valueNode
			return
		}
	}
	mapping.Content = append(mapping.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: key},
		valueNode,
	)
}

// writeDocument encodes doc and writes it atomically (temp file, then rename).
func writeDocument(configPath string, doc *yaml.Node) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".modal.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
