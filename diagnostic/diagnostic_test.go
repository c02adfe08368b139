package diagnostic_test

import (
	"encoding/json"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"rosbridge.dev/v1/protolib/diagnostic"
)

func TestDiagnostic(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Diagnostic Suite")
}

var _ = Describe("Diagnostic Report", func() {
	Context("Creation", func() {
		It("captures the error text and stamps the schema version", func() {
			report := diagnostic.New(diagnostic.SendFailure, "ws://localhost:9090", fmt.Errorf("broken pipe"))

			Expect(report.Kind).To(Equal(diagnostic.SendFailure))
			Expect(report.Message).To(Equal("broken pipe"))
			Expect(report.Target).To(Equal("ws://localhost:9090"))
			Expect(report.SchemaVersion).To(Equal(diagnostic.CurrentVersion))
			Expect(report.Timestamp).To(BeNumerically(">", 0))
		})

		It("tolerates a nil error", func() {
			report := diagnostic.New(diagnostic.CloseFailure, "ws://localhost:9090", nil)
			Expect(report.Message).To(BeEmpty())
		})
	})

	Context("Serialization", func() {
		var output diagnostic.Report
		var raw map[string]interface{}
		var err error

		When("Given a receive failure", func() {
			BeforeEach(func() {
				output = diagnostic.Report{}
				input, _ := json.Marshal(diagnostic.New(diagnostic.ReceiveFailure, "wss://robot:9090", fmt.Errorf("unexpected EOF")))

				err = json.Unmarshal(input, &output)
				Expect(json.Unmarshal(input, &raw)).To(Succeed())
			})

			It("writes the kind as its name", func() {
				Expect(raw["kind"]).To(Equal("ReceiveFailure"))
				Expect(raw["schemaVersion"]).To(Equal(diagnostic.CurrentVersion))
			})

			It("keeps every field", func() {
				Expect(err).To(BeNil(), fmt.Sprintf("failed to unmarshal report: %s", err))
				Expect(output.Kind).To(Equal(diagnostic.ReceiveFailure))
				Expect(output.Target).To(Equal("wss://robot:9090"))
				Expect(output.Message).To(Equal("unexpected EOF"))
			})
		})

		When("Given an unknown kind", func() {
			BeforeEach(func() {
				output = diagnostic.Report{}
				err = json.Unmarshal([]byte(`{"kind":"WriteFailure"}`), &output)
			})

			It("keeps the name as is", func() {
				Expect(err).To(BeNil(), fmt.Sprintf("failed to unmarshal report: %s", err))
				Expect(output.Kind).To(Equal(diagnostic.Kind("WriteFailure")))
				Expect(output.Kind).ToNot(Equal(diagnostic.SendFailure))
			})
		})
	})
})
