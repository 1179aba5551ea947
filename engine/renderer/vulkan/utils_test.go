package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestVulkanResultString(t *testing.T) {
	assert.Equal(t, "VK_ERROR_DEVICE_LOST", VulkanResultString(vk.ErrorDeviceLost, false))
	assert.Equal(t, "VK_SUCCESS Command successfully completed", VulkanResultString(vk.Success, true))
	assert.Equal(t, "VkResult(-424242)", VulkanResultString(vk.Result(-424242), true))
}

func TestVulkanResultIsSuccess(t *testing.T) {
	assert.True(t, VulkanResultIsSuccess(vk.Success))
	assert.True(t, VulkanResultIsSuccess(vk.Suboptimal))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorOutOfDate))
	assert.False(t, VulkanResultIsSuccess(vk.ErrorDeviceLost))
}

func TestVulkanSafeString(t *testing.T) {
	assert.Equal(t, "VK_KHR_surface\x00", VulkanSafeString("VK_KHR_surface"))
	assert.Equal(t, "main\x00", VulkanSafeString("main\x00"))
	assert.Equal(t, "\x00", VulkanSafeString(""))

	list := VulkanSafeStrings([]string{"a", "b\x00"})
	assert.Equal(t, []string{"a\x00", "b\x00"}, list)
}

func TestMathClamp(t *testing.T) {
	assert.Equal(t, uint32(2), MathClamp[uint32](1, 2, 8))
	assert.Equal(t, uint32(8), MathClamp[uint32](9, 2, 8))
	assert.Equal(t, 0.5, MathClamp(0.5, 0.0, 1.0))
}
