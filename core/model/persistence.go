package model

import (
	"encoding/gob"
	"io"
	"os"
	"path/filepath"

	"github.com/factoryml/trainer/pkg/errors"
)

// SaveModel gob-encodes a fitted model to a file. Writing goes through a
// temporary file in the same directory and a rename, so a failed encode
// never leaves a partial artifact at the target path.
func SaveModel(model interface{}, filename string) error {
	tmp, err := os.CreateTemp(filepath.Dir(filename), ".model-*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create model file")
	}
	tmpName := tmp.Name()

	if err := SaveModelToWriter(model, tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to close model file")
	}
	if err := os.Rename(tmpName, filename); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "failed to move model file into place")
	}
	return nil
}

// LoadModel gob-decodes a model from a file into the given pointer.
func LoadModel(model interface{}, filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return errors.Wrap(err, "failed to open model file")
	}
	defer file.Close()

	return LoadModelFromReader(model, file)
}

// SaveModelToWriter gob-encodes a model to a writer.
func SaveModelToWriter(model interface{}, w io.Writer) error {
	encoder := gob.NewEncoder(w)
	if err := encoder.Encode(model); err != nil {
		return errors.Wrap(err, "failed to encode model")
	}
	return nil
}

// LoadModelFromReader gob-decodes a model from a reader into the given
// pointer.
func LoadModelFromReader(model interface{}, r io.Reader) error {
	decoder := gob.NewDecoder(r)
	if err := decoder.Decode(model); err != nil {
		return errors.Wrap(err, "failed to decode model")
	}
	return nil
}
