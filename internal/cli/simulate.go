package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var simulateContainer int

var simulateCmd = &cobra.Command{
	Use:   "simulate-fork",
	Short: "模拟一次容器分叉并触发告警",
	RunE: func(cmd *cobra.Command, args []string) error {
		if simulateContainer <= 0 {
			return errors.New("--container 必须大于 0")
		}
		return getApp().SimulateFork(cmd.Context(), simulateContainer)
	},
}

func init() {
	simulateCmd.Flags().IntVar(&simulateContainer, "container", 1, "发生分叉的容器编号")
}
