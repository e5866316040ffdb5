package parser

import (
	"testing"

	"github.com/thomas-touhey/lscl/escape"
)

var benchInput = `
input {
  beats {
    port => 5044
    id => "beats_in"
  }
}

filter {
  if [type] == "apache" {
    grok {
      match => { "message" => "%{COMBINEDAPACHELOG}" }
      tag_on_failure => ["_grokparsefailure", "apache"]
    }
    date {
      match => [ "timestamp", "dd/MMM/yyyy:HH:mm:ss Z" ]
    }
  } else if [type] =~ /^syslog/ and [host][name] != "localhost" {
    mutate {
      add_field => { "received_at" => "%{@timestamp}" }
      convert => { "pid" => "integer" }
    }
  } else if "debug" in [tags] or ![level] {
    drop {}
  }

  mutate {
    remove_field => [ "[agent][ephemeral_id]", "ecs" ]
    rename => { "hostname" => "[host][name]" }
  }
}

output {
  elasticsearch {
    hosts => ["http://localhost:9200"]
    index => "logs-%{+YYYY.MM.dd}"
  }
}
`

func BenchmarkParse(b *testing.B) {
	p := New(escape.Options{})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := p.Parse(benchInput)
		if err != nil {
			b.Fatalf("Parse() error = %v", err)
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := Tokenize(benchInput, escape.Options{})
		if err != nil {
			b.Fatalf("Tokenize() error = %v", err)
		}
	}
}
