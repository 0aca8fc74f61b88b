package farmergptcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	farmergptcmder "github.com/farmergpt/farmergpt/cmd/farmergpt"
)

var _ = Describe("NewFarmerGPTCmd", func() {
	It("wires every subcommand", func() {
		cmd := farmergptcmder.NewFarmerGPTCmd()
		names := make([]string, 0, len(cmd.Commands()))
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("serve", "ask", "chat", "config", "version"))
	})

	It("has the global flags", func() {
		cmd := farmergptcmder.NewFarmerGPTCmd()
		Expect(cmd.PersistentFlags().Lookup("debug")).NotTo(BeNil())
		Expect(cmd.PersistentFlags().Lookup("config-dir")).NotTo(BeNil())
	})
})
