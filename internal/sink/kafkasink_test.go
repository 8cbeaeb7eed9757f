package sink

import (
	"os"
	"testing"
)

func TestNewKafkaSinkFromEnv(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		for _, k := range []string{
			"KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_ACKS", "KAFKA_COMPRESSION",
			"KAFKA_SASL_MECHANISM", "KAFKA_SASL_USER", "KAFKA_SASL_PASSWORD",
			"KAFKA_TLS_CA", "KAFKA_TLS_SKIP_VERIFY",
		} {
			os.Unsetenv(k)
		}

		s := NewKafkaSinkFromEnv()

		if len(s.config.Brokers) != 1 || s.config.Brokers[0] != "localhost:9092" {
			t.Errorf("Brokers = %v, want [localhost:9092]", s.config.Brokers)
		}
		if s.config.Topic != "leadfilter.verdicts" {
			t.Errorf("Topic = %q, want leadfilter.verdicts", s.config.Topic)
		}
		if s.config.Acks != "all" {
			t.Errorf("Acks = %q, want all", s.config.Acks)
		}
	})

	t.Run("broker list parsed and trimmed", func(t *testing.T) {
		os.Setenv("KAFKA_BROKERS", " broker1:9092 , broker2:9092 ")
		os.Setenv("KAFKA_TOPIC", "verdicts.custom")
		defer func() {
			os.Unsetenv("KAFKA_BROKERS")
			os.Unsetenv("KAFKA_TOPIC")
		}()

		s := NewKafkaSinkFromEnv()

		if len(s.config.Brokers) != 2 {
			t.Fatalf("Brokers = %v, want 2 entries", s.config.Brokers)
		}
		if s.config.Brokers[0] != "broker1:9092" || s.config.Brokers[1] != "broker2:9092" {
			t.Errorf("Brokers = %v", s.config.Brokers)
		}
		if s.config.Topic != "verdicts.custom" {
			t.Errorf("Topic = %q", s.config.Topic)
		}
	})

	t.Run("sasl and tls knobs", func(t *testing.T) {
		os.Setenv("KAFKA_SASL_MECHANISM", "PLAIN")
		os.Setenv("KAFKA_SASL_USER", "svc-leadfilter")
		os.Setenv("KAFKA_TLS_SKIP_VERIFY", "true")
		defer func() {
			os.Unsetenv("KAFKA_SASL_MECHANISM")
			os.Unsetenv("KAFKA_SASL_USER")
			os.Unsetenv("KAFKA_TLS_SKIP_VERIFY")
		}()

		s := NewKafkaSinkFromEnv()

		if s.config.SASLMechanism != "PLAIN" {
			t.Errorf("SASLMechanism = %q", s.config.SASLMechanism)
		}
		if s.config.SASLUser != "svc-leadfilter" {
			t.Errorf("SASLUser = %q", s.config.SASLUser)
		}
		if !s.config.TLSSkipVerify {
			t.Error("TLSSkipVerify should be true")
		}
	})
}

func TestKafkaSinkEnqueueBeforeStart(t *testing.T) {
	s := NewKafkaSink([]string{"localhost:9092"}, "leadfilter.verdicts")

	if err := s.Enqueue(sampleRecord()); err == nil {
		t.Error("Enqueue before Start should fail")
	}
}

func TestKafkaSinkCloseBeforeStart(t *testing.T) {
	s := NewKafkaSink([]string{"localhost:9092"}, "leadfilter.verdicts")

	if err := s.Close(); err != nil {
		t.Errorf("Close before Start should be a no-op, got %v", err)
	}
}

func TestKafkaSinkName(t *testing.T) {
	if got := NewKafkaSink(nil, "t").Name(); got != "kafka" {
		t.Errorf("Name() = %q, want kafka", got)
	}
}
