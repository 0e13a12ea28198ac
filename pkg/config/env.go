package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// FieldError é retornado quando o valor de uma variável de ambiente não pode ser
// convertido para o tipo do campo.
type FieldError struct {
	FieldName string
	EnvVar    string
	Value     string
	Err       error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: erro ao definir %s a partir de %s=%s: %v", e.FieldName, e.EnvVar, e.Value, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ApplyDefaults preenche os campos com o valor da tag "envDefault".
// Deve ser chamado antes do unmarshal do YAML, que sobrescreve o que estiver declarado.
func ApplyDefaults(cfg *SimulatorConfig) error {
	return walkEnv(reflect.ValueOf(cfg).Elem(), func(f reflect.StructField) (string, bool) {
		v := f.Tag.Get("envDefault")
		return v, v != ""
	})
}

// ApplyEnv sobrescreve os campos cuja variável da tag "env" está definida e não vazia.
func ApplyEnv(cfg *SimulatorConfig) error {
	return walkEnv(reflect.ValueOf(cfg).Elem(), func(f reflect.StructField) (string, bool) {
		name := f.Tag.Get("env")
		if name == "" {
			return "", false
		}
		v := os.Getenv(name)
		return v, v != ""
	})
}

// walkEnv percorre recursivamente a struct aplicando o valor devolvido por lookup.
func walkEnv(val reflect.Value, lookup func(reflect.StructField) (string, bool)) error {
	typ := val.Type()

	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)

		if !field.CanSet() {
			continue
		}

		if field.Kind() == reflect.Struct {
			if err := walkEnv(field, lookup); err != nil {
				return err
			}
			continue
		}

		value, ok := lookup(fieldType)
		if !ok {
			continue
		}

		if err := setFieldValue(field, value); err != nil {
			return &FieldError{
				FieldName: fieldType.Name,
				EnvVar:    fieldType.Tag.Get("env"),
				Value:     value,
				Err:       err,
			}
		}
	}

	return nil
}

// setFieldValue define o valor de um campo baseado no seu tipo
func setFieldValue(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)

	case reflect.Bool:
		boolValue, err := strconv.ParseBool(strings.ToLower(value))
		if err != nil {
			return err
		}
		field.SetBool(boolValue)

	default:
		return fmt.Errorf("tipo não suportado: %s", field.Type())
	}

	return nil
}
